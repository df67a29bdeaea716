package domain

// Product — позиция каталога, полученная от бэкенда.
type Product struct {
	// ID — серверный идентификатор товара; единственная серверная идентичность в клиенте.
	ID int64
	// Name — отображаемое название товара.
	Name string
	// SKU — артикул.
	SKU string
	// Description — произвольное описание.
	Description string
	// PriceMinor — цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// StockQuantity — суммарный остаток по всем филиалам; 0, если бэкенд не прислал сток.
	StockQuantity int32
	// CategoryID и CategoryName приходят вместе с товаром.
	CategoryID   int64
	CategoryName string
	// IsActive — товар доступен для продажи.
	IsActive bool
}

// Category — категория товара из справочника бэкенда.
type Category struct {
	ID   int64
	Name string
}

// ProductInput — данные формы создания/обновления товара.
// Валидация выполняется на клиенте до любого сетевого вызова.
type ProductInput struct {
	Name        string
	SKU         string
	Description string
	PriceMinor  int64
	Stock       int32
	CategoryID  int64
	IsActive    bool
}

// Validate проверяет инварианты формы товара и возвращает список замечаний.
func (p ProductInput) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.PriceMinor <= 0 {
		errs = append(errs, ErrPriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if p.CategoryID <= 0 {
		errs = append(errs, ErrCategoryRequired)
	}

	return errs
}
