package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// reconnectDelay — пауза перед повторным подключением после обрыва.
const reconnectDelay = 5 * time.Second

// Event — широковещательное событие бэкенда (новая транзакция, низкий
// остаток и т.п.).
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// ParseEvent разбирает одно сообщение websocket-канала.
func ParseEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Event == "" {
		return Event{}, fmt.Errorf("event name is empty")
	}
	return ev, nil
}

// Handler вызывается на каждое принятое событие.
type Handler func(Event)

// TokenSource выдаёт актуальный bearer-токен сессии.
type TokenSource interface {
	Token() string
}

// Listener слушает websocket-канал уведомлений бэкенда.
// Подключение опционально: терминал полностью работоспособен и без него.
type Listener struct {
	url     string
	tokens  TokenSource
	handler Handler
	logger  *log.Entry
	dialer  *websocket.Dialer
	delay   time.Duration
}

// NewListener создаёт слушателя для заданного websocket-адреса.
// Токен запрашивается у источника перед каждым подключением: логин после
// старта аутентифицирует следующий dial без перезапуска.
func NewListener(url string, tokens TokenSource, handler Handler, logger *log.Entry) *Listener {
	if logger == nil {
		logger = log.New().WithField("component", "notify")
	}
	return &Listener{
		url:     url,
		tokens:  tokens,
		handler: handler,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
		delay:   reconnectDelay,
	}
}

// Run подключается и читает события до отмены контекста.
// После обрыва соединения слушатель переподключается с фиксированной паузой.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.listenOnce(ctx); err != nil && ctx.Err() == nil {
			l.logger.WithError(err).Warn("notification stream interrupted")
		}

		select {
		case <-ctx.Done():
			l.logger.Info("notification listener stopped")
			return
		case <-time.After(l.delay):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	headers := http.Header{}
	if l.tokens != nil {
		if token := l.tokens.Token(); token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	conn, _, err := l.dialer.DialContext(ctx, l.url, headers)
	if err != nil {
		return fmt.Errorf("dial %s: %w", l.url, err)
	}
	defer conn.Close()

	l.logger.WithField("url", l.url).Info("notification stream connected")

	// Чтение блокирует; закрываем соединение при отмене контекста.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		ev, err := ParseEvent(payload)
		if err != nil {
			l.logger.WithError(err).Debug("skipping malformed event")
			continue
		}

		if l.handler != nil {
			l.handler(ev)
		}
	}
}
