package purchase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// TaxRate — фиксированная налоговая ставка заказа поставки (10%).
const TaxRate = 0.10

// Line — одна позиция заказа поставки.
// TotalMinor никогда не устанавливается напрямую: он пересчитывается при
// каждом изменении количества или цены этой позиции.
type Line struct {
	// ID — уникальный идентификатор строки; единственный контракт — уникальность.
	ID             string
	Description    string
	Quantity       int32
	UnitPriceMinor int64
	TotalMinor     int64
}

// OrderTotals — производные суммы заказа поставки.
type OrderTotals struct {
	SubtotalMinor int64
	TaxAmount     float64
	GrandTotal    float64
}

// ComputeOrderTotals — чистая функция: подытог как сумма строк, налог 10%
// от подытога, итог — их сумма.
func ComputeOrderTotals(lines []Line) OrderTotals {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.TotalMinor
	}

	tax := float64(subtotal) * TaxRate
	return OrderTotals{
		SubtotalMinor: subtotal,
		TaxAmount:     tax,
		GrandTotal:    float64(subtotal) + tax,
	}
}

// Order — черновик заказа поставки: шапка и список позиций.
type Order struct {
	mu sync.RWMutex

	supplier  string
	orderDate time.Time
	notes     string
	lines     []Line
}

// NewOrder создаёт пустой черновик с сегодняшней датой заказа.
func NewOrder() *Order {
	return &Order{orderDate: time.Now().UTC()}
}

// Add добавляет новую строку с количеством 1 и нулевой ценой.
func (o *Order) Add() Line {
	o.mu.Lock()
	defer o.mu.Unlock()

	line := Line{
		ID:       uuid.NewString(),
		Quantity: 1,
	}
	o.lines = append(o.lines, line)
	return line
}

// Remove убирает строку по идентификатору; отсутствующая строка — no-op.
func (o *Order) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	filtered := o.lines[:0]
	for _, line := range o.lines {
		if line.ID != id {
			filtered = append(filtered, line)
		}
	}
	o.lines = filtered
}

// SetDescription обновляет описание строки; суммы не трогает.
func (o *Order) SetDescription(id, description string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	line, ok := o.find(id)
	if !ok {
		return domain.ErrLineNotFound
	}
	line.Description = description
	return nil
}

// SetQuantity обновляет количество строки и пересчитывает её сумму.
// Остальные строки не затрагиваются.
func (o *Order) SetQuantity(id string, quantity int32) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	line, ok := o.find(id)
	if !ok {
		return domain.ErrLineNotFound
	}
	line.Quantity = quantity
	line.TotalMinor = int64(line.Quantity) * line.UnitPriceMinor
	return nil
}

// SetUnitPrice обновляет цену строки и пересчитывает её сумму.
func (o *Order) SetUnitPrice(id string, priceMinor int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	line, ok := o.find(id)
	if !ok {
		return domain.ErrLineNotFound
	}
	line.UnitPriceMinor = priceMinor
	line.TotalMinor = int64(line.Quantity) * line.UnitPriceMinor
	return nil
}

// find возвращает указатель на строку; вызывается под мьютексом.
func (o *Order) find(id string) (*Line, bool) {
	for i := range o.lines {
		if o.lines[i].ID == id {
			return &o.lines[i], true
		}
	}
	return nil, false
}

// Lines возвращает копию строк в порядке добавления.
func (o *Order) Lines() []Line {
	o.mu.RLock()
	defer o.mu.RUnlock()

	lines := make([]Line, len(o.lines))
	copy(lines, o.lines)
	return lines
}

// Totals пересчитывает суммы заказа по текущим строкам.
func (o *Order) Totals() OrderTotals {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return ComputeOrderTotals(o.lines)
}

// SetSupplier сохраняет поставщика в шапке заказа.
func (o *Order) SetSupplier(supplier string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.supplier = supplier
}

// SetNotes сохраняет примечания к заказу.
func (o *Order) SetNotes(notes string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notes = notes
}

// SetOrderDate сохраняет дату заказа.
func (o *Order) SetOrderDate(date time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orderDate = date
}

// Header возвращает шапку заказа: поставщик, дата, примечания.
func (o *Order) Header() (supplier string, orderDate time.Time, notes string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.supplier, o.orderDate, o.notes
}
