package domain

import "errors"

var (
	// Ошибка отсутствующего названия товара в форме.
	ErrNameRequired = errors.New("name is required")
	// Ошибка некорректной цены (<= 0 в форме, < 0 в позиции).
	ErrPriceInvalid = errors.New("price must be greater than zero")
	// Ошибка отрицательного остатка в форме товара.
	ErrStockNegative = errors.New("stock must be non-negative")
	// Ошибка отсутствующей категории в форме товара.
	ErrCategoryRequired = errors.New("category is required")
	// Ошибка отсутствующего идентификатора товара в позиции корзины.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка при некорректном количестве (<= 0).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrProductNotFound возвращается, если товар не найден в загруженном каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrLineNotFound возвращается, если позиция заказа поставки не найдена.
	ErrLineNotFound = errors.New("order line not found")
	// ErrCartEmpty — попытка оформить транзакцию с пустой корзиной.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrNotAuthenticated — операция требует активной сессии.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// IsNotFound проверяет, является ли ошибка отсутствием товара или позиции.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrLineNotFound)
}
