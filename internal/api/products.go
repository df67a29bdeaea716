package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// ProductPage — одна страница каталога вместе с позицией пагинации.
type ProductPage struct {
	Products    []domain.Product
	CurrentPage int
	LastPage    int
}

// productDTO повторяет форму товара на проводе. Поле stock приходит как
// массив построчных остатков по филиалам и может отсутствовать целиком.
type productDTO struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	SKU         string        `json:"sku"`
	Description string        `json:"description"`
	Price       int64         `json:"price"`
	CategoryID  int64         `json:"category_id"`
	Category    *categoryDTO  `json:"category"`
	Stock       []stockRowDTO `json:"stock"`
	IsActive    bool          `json:"is_active"`
}

type stockRowDTO struct {
	Quantity int32 `json:"quantity"`
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// toDomain переводит DTO в доменный товар. Отсутствующий или пустой сток
// означает нулевой остаток, а не ошибку.
func (d productDTO) toDomain() domain.Product {
	p := domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		SKU:         d.SKU,
		Description: d.Description,
		PriceMinor:  d.Price,
		CategoryID:  d.CategoryID,
		IsActive:    d.IsActive,
	}
	for _, row := range d.Stock {
		p.StockQuantity += row.Quantity
	}
	if d.Category != nil {
		p.CategoryID = d.Category.ID
		p.CategoryName = d.Category.Name
	}
	return p
}

// productInputDTO — тело create/update запроса.
type productInputDTO struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int32  `json:"stock"`
	CategoryID  int64  `json:"category_id"`
	IsActive    bool   `json:"is_active"`
}

func inputToDTO(input domain.ProductInput) productInputDTO {
	return productInputDTO{
		Name:        input.Name,
		SKU:         input.SKU,
		Description: input.Description,
		Price:       input.PriceMinor,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		IsActive:    input.IsActive,
	}
}

// ListProducts запрашивает одну страницу каталога с опциональным поиском.
// Ответ приходит в конверте data.{data, current_page, last_page}.
func (c *Client) ListProducts(ctx context.Context, search string, page int) (ProductPage, error) {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if search != "" {
		query.Set("search", search)
	}

	var envelope struct {
		Data struct {
			Data        []productDTO `json:"data"`
			CurrentPage int          `json:"current_page"`
			LastPage    int          `json:"last_page"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/products", query, &envelope); err != nil {
		return ProductPage{}, err
	}

	result := ProductPage{
		Products:    make([]domain.Product, 0, len(envelope.Data.Data)),
		CurrentPage: envelope.Data.CurrentPage,
		LastPage:    envelope.Data.LastPage,
	}
	for _, dto := range envelope.Data.Data {
		result.Products = append(result.Products, dto.toDomain())
	}
	if result.LastPage < 1 {
		result.LastPage = 1
	}
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	return result, nil
}

// GetProduct запрашивает один товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var envelope struct {
		Data productDTO `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), nil, &envelope); err != nil {
		return domain.Product{}, err
	}
	return envelope.Data.toDomain(), nil
}

// CreateProduct проверяет форму на клиенте и создаёт товар.
// Валидационные ошибки возвращаются до любого сетевого вызова.
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	var envelope struct {
		Data productDTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/products", nil, inputToDTO(input), &envelope); err != nil {
		return domain.Product{}, err
	}

	c.logger.WithField("product", input.Name).Info("product created")
	return envelope.Data.toDomain(), nil
}

// UpdateProduct проверяет форму и обновляет товар.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	var envelope struct {
		Data productDTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, inputToDTO(input), &envelope); err != nil {
		return domain.Product{}, err
	}

	c.logger.WithField("product_id", id).Info("product updated")
	return envelope.Data.toDomain(), nil
}

// ListCategories запрашивает справочник категорий.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var envelope struct {
		Data []categoryDTO `json:"data"`
	}
	if err := c.get(ctx, "/category-product", nil, &envelope); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(envelope.Data))
	for _, dto := range envelope.Data {
		categories = append(categories, domain.Category{ID: dto.ID, Name: dto.Name})
	}
	return categories, nil
}

// Ping проверяет доступность бэкенда запросом первой страницы каталога.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListProducts(ctx, "", 1)
	return err
}
