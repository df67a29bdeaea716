package cart

import "github.com/vladislavdragonenkov/pos-terminal/internal/domain"

// Totals — производные суммы корзины. Значения не кэшируются: структура
// пересчитывается заново после каждой мутации позиций, скидки или налога.
type Totals struct {
	// SubtotalMinor — сумма цена*количество по всем позициям, точное целое.
	SubtotalMinor int64
	// DiscountAmount и TaxAmount считаются в float64 без округления;
	// округление — забота слоя отображения.
	DiscountAmount float64
	TaxAmount      float64
	Total          float64
}

// ComputeTotals — чистая функция расчёта сумм корзины.
// Порядок фиксирован: скидка берётся от подытога, налог — от подытога за
// вычетом скидки.
func ComputeTotals(items []domain.LineItem, discountPercent, taxPercent float64) Totals {
	var subtotal int64
	for _, li := range items {
		subtotal += li.SubtotalMinor()
	}

	discount := float64(subtotal) * discountPercent / 100
	tax := (float64(subtotal) - discount) * taxPercent / 100

	return Totals{
		SubtotalMinor:  subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          float64(subtotal) - discount + tax,
	}
}
