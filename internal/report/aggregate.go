package report

import (
	"sort"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// TopProductsLimit — сколько товаров попадает в отчёт «топ товаров».
const TopProductsLimit = 5

// Bucket — агрегированная группа продаж по одному ключу.
// Бакеты пересчитываются при каждом построении отчёта и нигде не хранятся.
type Bucket struct {
	Key string
	// TotalMinor — сумма количество*цена по записям группы.
	TotalMinor int64
	// Quantity — суммарное количество единиц.
	Quantity int64
	// Count — число записей в группе.
	Count int
}

// GroupBy сворачивает записи в бакеты по произвольному ключу.
// Результат отсортирован по убыванию суммы; при равных суммах — по ключу,
// чтобы порядок был детерминированным.
func GroupBy(records []domain.SalesRecord, keyFn func(domain.SalesRecord) string) []Bucket {
	byKey := make(map[string]*Bucket)
	for _, r := range records {
		key := keyFn(r)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key}
			byKey[key] = b
		}
		b.TotalMinor += r.TotalMinor()
		b.Quantity += int64(r.Quantity)
		b.Count++
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].TotalMinor != buckets[j].TotalMinor {
			return buckets[i].TotalMinor > buckets[j].TotalMinor
		}
		return buckets[i].Key < buckets[j].Key
	})

	return buckets
}

// ByCategory группирует продажи по категории товара.
func ByCategory(records []domain.SalesRecord) []Bucket {
	return GroupBy(records, func(r domain.SalesRecord) string { return r.Category })
}

// ByRegion группирует продажи по региону.
func ByRegion(records []domain.SalesRecord) []Bucket {
	return GroupBy(records, func(r domain.SalesRecord) string { return r.Region })
}

// ByMonth группирует продажи по месяцу даты записи (метки вида "Jan 2024").
func ByMonth(records []domain.SalesRecord) []Bucket {
	return GroupBy(records, func(r domain.SalesRecord) string { return r.Date.Format("Jan 2006") })
}

// ByProduct группирует продажи по товару.
func ByProduct(records []domain.SalesRecord) []Bucket {
	return GroupBy(records, func(r domain.SalesRecord) string { return r.Product })
}

// TopProducts возвращает не более limit самых продаваемых товаров.
func TopProducts(records []domain.SalesRecord, limit int) []Bucket {
	buckets := ByProduct(records)
	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

// Overview — сводные показатели по всем записям продаж.
type Overview struct {
	TotalRevenueMinor int64
	TotalOrders       int
	TotalQuantity     int64
	// AvgOrderValue равен нулю для пустого списка записей: деление на ноль
	// сюда не протекает.
	AvgOrderValue float64
}

// ComputeOverview считает сводку одним проходом по записям.
func ComputeOverview(records []domain.SalesRecord) Overview {
	ov := Overview{TotalOrders: len(records)}
	for _, r := range records {
		ov.TotalRevenueMinor += r.TotalMinor()
		ov.TotalQuantity += int64(r.Quantity)
	}
	if ov.TotalOrders > 0 {
		ov.AvgOrderValue = float64(ov.TotalRevenueMinor) / float64(ov.TotalOrders)
	}
	return ov
}
