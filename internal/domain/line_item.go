package domain

// LineItem — одна позиция корзины: товар плюс количество.
// Идентичность позиции определяется ProductID: повторное добавление того же
// товара увеличивает количество, а не создаёт вторую строку.
type LineItem struct {
	ProductID int64
	Name      string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Quantity всегда >= 1; уменьшение ниже единицы удаляет позицию.
	Quantity int32
}

// SubtotalMinor возвращает стоимость позиции: цена * количество.
func (li LineItem) SubtotalMinor() int64 {
	return li.PriceMinor * int64(li.Quantity)
}

// Validate проверяет инварианты позиции корзины.
func (li LineItem) Validate() []error {
	var errs []error

	if li.ProductID <= 0 {
		errs = append(errs, ErrProductIDRequired)
	}
	if li.Quantity <= 0 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if li.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}

	return errs
}
