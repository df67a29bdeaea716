package api

import (
	"context"
	"net/http"
)

// DailySalesSummary — готовая сводка продаж за день от бэкенда.
type DailySalesSummary struct {
	Date         string `json:"date"`
	TotalMinor   int64  `json:"total"`
	Transactions int    `json:"transactions"`
}

// TopProductRow — строка серверного отчёта «топ товаров».
type TopProductRow struct {
	Product    string `json:"product"`
	TotalMinor int64  `json:"total"`
	Quantity   int64  `json:"quantity"`
}

// DailySales запрашивает сводку продаж за день по филиалу.
func (c *Client) DailySales(ctx context.Context, branchID string) (DailySalesSummary, error) {
	body := struct {
		BranchID string `json:"branch_id"`
	}{BranchID: branchID}

	var envelope struct {
		Data DailySalesSummary `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/reports/daily-sales", nil, body, &envelope); err != nil {
		return DailySalesSummary{}, err
	}
	return envelope.Data, nil
}

// TopProducts запрашивает серверный отчёт «топ товаров».
// Клиентский эквивалент считается в пакете report из сырых записей.
func (c *Client) TopProducts(ctx context.Context) ([]TopProductRow, error) {
	var envelope struct {
		Data []TopProductRow `json:"data"`
	}
	if err := c.get(ctx, "/reports/top-product", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
