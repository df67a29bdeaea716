package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/pos-terminal/internal/cart"
	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// transactionItemDTO — позиция транзакции на проводе.
type transactionItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
	Price     int64 `json:"price"`
}

// transactionRequest — тело POST /transactions.
type transactionRequest struct {
	IdempotencyKey  string               `json:"idempotency_key"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	PaymentMethod   string               `json:"payment_method"`
	DiscountPercent float64              `json:"discount_percent"`
	TaxPercent      float64              `json:"tax_percent"`
	Items           []transactionItemDTO `json:"items"`
}

// SubmitTransaction отправляет оформленную корзину на бэкенд.
// Ключ идемпотентности уходит и в теле, и в заголовке.
func (c *Client) SubmitTransaction(ctx context.Context, sub cart.Submission) error {
	req := transactionRequest{
		IdempotencyKey:  sub.IdempotencyKey,
		CustomerName:    sub.CustomerName,
		CustomerPhone:   sub.CustomerPhone,
		PaymentMethod:   sub.PaymentMethod,
		DiscountPercent: sub.DiscountPercent,
		TaxPercent:      sub.TaxPercent,
	}
	for _, li := range sub.Items {
		req.Items = append(req.Items, transactionItemDTO{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     li.PriceMinor,
		})
	}

	return c.do(ctx, http.MethodPost, "/transactions", nil, req, nil)
}

// salesRecordDTO — запись продаж из GET /transactions.
type salesRecordDTO struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Product  string `json:"product"`
	Quantity int32  `json:"quantity"`
	Price    int64  `json:"price"`
	Customer string `json:"customer"`
	Region   string `json:"region"`
}

// ListTransactions возвращает плоский список записей продаж для отчётов.
// Пустой список — валидный ответ, а не ошибка.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.SalesRecord, error) {
	var envelope struct {
		Data []salesRecordDTO `json:"data"`
	}
	if err := c.get(ctx, "/transactions", nil, &envelope); err != nil {
		return nil, err
	}

	records := make([]domain.SalesRecord, 0, len(envelope.Data))
	for _, dto := range envelope.Data {
		date, err := time.Parse("2006-01-02", dto.Date)
		if err != nil {
			// Запись с нечитаемой датой пропускаем, отчёт не должен падать
			// из-за одной строки.
			c.logger.WithField("date", dto.Date).Warn("skipping record with unparsable date")
			continue
		}
		records = append(records, domain.SalesRecord{
			Date:       date,
			Category:   dto.Category,
			Product:    dto.Product,
			Quantity:   dto.Quantity,
			PriceMinor: dto.Price,
			Customer:   dto.Customer,
			Region:     dto.Region,
		})
	}
	return records, nil
}
