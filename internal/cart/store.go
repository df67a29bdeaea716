package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
)

// DefaultPaymentMethod — способ оплаты, восстанавливаемый после сброса корзины.
const DefaultPaymentMethod = "cash"

// DefaultTaxPercent — налоговая ставка новой транзакции.
const DefaultTaxPercent = 10.0

// ProductResolver возвращает товар из текущей загруженной страницы каталога.
// Добавление в корзину не делает отдельный запрос к бэкенду.
type ProductResolver interface {
	ProductByID(id int64) (domain.Product, bool)
}

// Submission — снимок транзакции, отправляемый на бэкенд при оформлении.
type Submission struct {
	// IdempotencyKey защищает от двойной отправки при повторе запроса.
	IdempotencyKey  string
	CustomerName    string
	CustomerPhone   string
	PaymentMethod   string
	Items           []domain.LineItem
	DiscountPercent float64
	TaxPercent      float64
	Totals          Totals
}

// Submitter описывает отправку готовой транзакции внешнему коллаборатору.
type Submitter interface {
	SubmitTransaction(ctx context.Context, sub Submission) error
}

// Store — состояние текущей транзакции: позиции, данные покупателя,
// скидка и налог. Все мутации сериализуются мьютексом.
type Store struct {
	mu sync.RWMutex

	resolver        ProductResolver
	items           []domain.LineItem
	customerName    string
	customerPhone   string
	paymentMethod   string
	discountPercent float64
	taxPercent      float64

	logger *log.Entry
}

// NewStore создаёт пустую корзину поверх загруженного каталога.
func NewStore(resolver ProductResolver, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Store{
		resolver:      resolver,
		paymentMethod: DefaultPaymentMethod,
		taxPercent:    DefaultTaxPercent,
		logger:        logger,
	}
}

// AddItem добавляет товар в корзину. Товар ищется по id в загруженном
// каталоге; если позиция с таким товаром уже есть, её количество
// увеличивается, иначе новая строка добавляется в конец.
func (s *Store) AddItem(productID int64, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrQuantityInvalid
	}

	product, ok := s.resolver.ProductByID(productID)
	if !ok {
		return domain.ErrProductNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			return nil
		}
	}

	s.items = append(s.items, domain.LineItem{
		ProductID:  product.ID,
		Name:       product.Name,
		PriceMinor: product.PriceMinor,
		Quantity:   quantity,
	})
	return nil
}

// UpdateQuantity заменяет количество позиции, сохраняя её место в списке.
// Количество <= 0 эквивалентно удалению. Отсутствующая позиция — no-op.
func (s *Store) UpdateQuantity(productID int64, quantity int32) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem убирает позицию из корзины; отсутствующая позиция — no-op.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.items[:0]
	for _, li := range s.items {
		if li.ProductID != productID {
			filtered = append(filtered, li)
		}
	}
	s.items = filtered
}

// Items возвращает копию позиций в порядке добавления.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Totals пересчитывает суммы по текущему состоянию корзины.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeTotals(s.items, s.discountPercent, s.taxPercent)
}

// SetCustomer сохраняет данные покупателя.
func (s *Store) SetCustomer(name, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerName = name
	s.customerPhone = phone
}

// SetPaymentMethod сохраняет способ оплаты.
func (s *Store) SetPaymentMethod(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethod = method
}

// SetDiscountPercent устанавливает скидку в процентах от подытога.
func (s *Store) SetDiscountPercent(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discountPercent = percent
}

// SetTaxPercent устанавливает налоговую ставку.
func (s *Store) SetTaxPercent(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxPercent = percent
}

// Checkout собирает снимок транзакции, отправляет его и при успехе сбрасывает
// корзину. Пустая корзина не отправляется.
func (s *Store) Checkout(ctx context.Context, submitter Submitter) (Submission, error) {
	s.mu.RLock()
	if len(s.items) == 0 {
		s.mu.RUnlock()
		return Submission{}, domain.ErrCartEmpty
	}

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	sub := Submission{
		IdempotencyKey:  uuid.NewString(),
		CustomerName:    s.customerName,
		CustomerPhone:   s.customerPhone,
		PaymentMethod:   s.paymentMethod,
		Items:           items,
		DiscountPercent: s.discountPercent,
		TaxPercent:      s.taxPercent,
		Totals:          ComputeTotals(items, s.discountPercent, s.taxPercent),
	}
	s.mu.RUnlock()

	if err := submitter.SubmitTransaction(ctx, sub); err != nil {
		s.logger.WithError(err).Warn("transaction submission failed")
		return Submission{}, err
	}

	s.logger.WithFields(log.Fields{
		"items": len(sub.Items),
		"total": sub.Totals.Total,
	}).Info("transaction submitted")

	s.Reset()
	return sub, nil
}

// Reset очищает позиции, данные покупателя и скидку, восстанавливая способ
// оплаты по умолчанию. Вызывается после успешной отправки транзакции.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.customerName = ""
	s.customerPhone = ""
	s.discountPercent = 0
	s.paymentMethod = DefaultPaymentMethod
}

// Customer возвращает сохранённые данные покупателя.
func (s *Store) Customer() (name, phone string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customerName, s.customerPhone
}

// PaymentMethod возвращает текущий способ оплаты.
func (s *Store) PaymentMethod() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentMethod
}

// DiscountPercent возвращает текущую скидку.
func (s *Store) DiscountPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discountPercent
}

// TaxPercent возвращает текущую налоговую ставку.
func (s *Store) TaxPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxPercent
}
