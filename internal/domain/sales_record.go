package domain

import "time"

// SalesRecord — одна запись продаж для отчётов.
// Записи приходят от бэкенда и используются только для чтения: агрегации
// пересчитываются заново при каждом запросе и никогда не мутируют источник.
type SalesRecord struct {
	Date     time.Time
	Category string
	Product  string
	Quantity int32
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	Customer   string
	Region     string
}

// TotalMinor возвращает сумму записи: количество * цена.
func (r SalesRecord) TotalMinor() int64 {
	return int64(r.Quantity) * r.PriceMinor
}
