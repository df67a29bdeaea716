package catalog

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/api"
	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
	"github.com/vladislavdragonenkov/pos-terminal/internal/metrics"
)

// State — состояние запроса каталога для текущего ключа (поиск, страница).
type State int

const (
	// StateIdle — запрос ещё не выполнялся.
	StateIdle State = iota
	// StateLoading — запрос в полёте.
	StateLoading
	// StateSuccess — последний запрос применён, список актуален.
	StateSuccess
	// StateError — последний запрос упал; список остался от прошлого успеха.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Query — ключ запроса: зафиксированный поиск плюс страница.
type Query struct {
	Search string
	Page   int
}

// Lister запрашивает одну страницу каталога у бэкенда.
type Lister interface {
	ListProducts(ctx context.Context, search string, page int) (api.ProductPage, error)
}

// Store — клиент каталога с поиском и пагинацией.
//
// Поиск двухступенчатый: набранный текст хранится как черновик и попадает в
// запрос только после явного подтверждения. Ответы защищены монотонным
// счётчиком поколений: применяется только ответ последнего выданного запроса,
// опоздавшие молча отбрасываются. При ошибке список товаров не очищается —
// остаётся последний успешно загруженный.
type Store struct {
	mu sync.Mutex

	lister  Lister
	logger  *log.Entry
	metrics *metrics.FetchMetrics // nil отключает метрики (тесты)

	draft     string
	committed string
	page      int
	lastPage  int

	products []domain.Product
	state    State
	lastErr  error

	generation uint64
	closed     bool
}

// NewStore создаёт каталог в состоянии Idle на первой странице.
func NewStore(lister Lister, fm *metrics.FetchMetrics, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Store{
		lister:   lister,
		logger:   logger,
		metrics:  fm,
		page:     1,
		lastPage: 1,
	}
}

// Load выполняет первоначальную загрузку текущего ключа запроса.
func (s *Store) Load(ctx context.Context) error {
	return s.refresh(ctx)
}

// SetDraft сохраняет набранный текст поиска, не трогая зафиксированный запрос.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft возвращает текущий черновик поиска.
func (s *Store) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// CommitSearch фиксирует черновик как поисковый запрос, сбрасывает страницу
// на первую и перезагружает список.
func (s *Store) CommitSearch(ctx context.Context) error {
	s.mu.Lock()
	s.committed = s.draft
	s.page = 1
	s.mu.Unlock()
	return s.refresh(ctx)
}

// ClearSearch очищает и черновик, и зафиксированный запрос, возвращаясь на
// первую страницу.
func (s *Store) ClearSearch(ctx context.Context) error {
	s.mu.Lock()
	s.draft = ""
	s.committed = ""
	s.page = 1
	s.mu.Unlock()
	return s.refresh(ctx)
}

// NextPage переходит на следующую страницу с тем же поиском.
// На последней странице — no-op без запроса.
func (s *Store) NextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.page >= s.lastPage {
		s.mu.Unlock()
		return nil
	}
	s.page++
	s.mu.Unlock()
	return s.refresh(ctx)
}

// PrevPage переходит на предыдущую страницу; на первой — no-op.
func (s *Store) PrevPage(ctx context.Context) error {
	s.mu.Lock()
	if s.page <= 1 {
		s.mu.Unlock()
		return nil
	}
	s.page--
	s.mu.Unlock()
	return s.refresh(ctx)
}

// GoToPage переходит на указанную страницу, ограничивая её диапазоном
// [1, lastPage].
func (s *Store) GoToPage(ctx context.Context, page int) error {
	s.mu.Lock()
	if page < 1 {
		page = 1
	}
	if page > s.lastPage {
		page = s.lastPage
	}
	if page == s.page && s.state == StateSuccess {
		s.mu.Unlock()
		return nil
	}
	s.page = page
	s.mu.Unlock()
	return s.refresh(ctx)
}

// refresh выдаёт новый запрос для текущего ключа и применяет ответ, если к
// моменту завершения он всё ещё последний.
func (s *Store) refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	search := s.committed
	page := s.page
	s.state = StateLoading
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordFetchStarted()
	}
	start := time.Now()

	result, err := s.lister.ListProducts(ctx, search, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation {
		// Ответ устарел: либо каталог закрыт, либо успел уйти более новый
		// запрос. Состояние не трогаем.
		if s.metrics != nil {
			s.metrics.RecordFetchStale()
		}
		s.logger.WithFields(log.Fields{
			"search": search,
			"page":   page,
		}).Debug("dropping stale catalog response")
		return nil
	}

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordFetchFailed(time.Since(start))
		}
		s.state = StateError
		s.lastErr = err
		s.logger.WithError(err).WithFields(log.Fields{
			"search": search,
			"page":   page,
		}).Warn("catalog fetch failed")
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordFetchSucceeded(time.Since(start))
	}

	// Список и пагинация заменяются атомарно, под одним захватом мьютекса.
	s.products = result.Products
	s.page = result.CurrentPage
	s.lastPage = result.LastPage
	if s.page > s.lastPage {
		s.page = s.lastPage
	}
	s.state = StateSuccess
	s.lastErr = nil
	return nil
}

// Close останавливает каталог: все ещё не применённые ответы будут отброшены.
// Вызывается при уходе с экрана товаров.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Products возвращает последнюю успешно загруженную страницу товаров.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	return products
}

// ProductByID ищет товар в загруженной странице каталога.
func (s *Store) ProductByID(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Query возвращает текущий ключ запроса: зафиксированный поиск и страницу.
func (s *Store) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Query{Search: s.committed, Page: s.page}
}

// Pagination возвращает текущую и последнюю страницы.
func (s *Store) Pagination() (current, last int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.lastPage
}

// State возвращает состояние последнего запроса.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err возвращает ошибку последнего запроса (nil после успеха).
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
