package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// defaultTimeout ограничивает каждый запрос к бэкенду.
// Повторов и backoff нет: неудачный запрос сразу отдаёт ошибку вызывающему.
const defaultTimeout = 15 * time.Second

// TokenSource возвращает bearer-токен текущей сессии; пустая строка — запрос
// уходит без авторизации (например, login).
type TokenSource interface {
	Token() string
}

// Client — типизированный клиент REST API бэкенда.
// Все ответы декодируются в DTO на границе; дальше по клиенту ходят только
// доменные типы.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	userAgent string
	logger    *log.Entry
}

// NewClient создаёт клиент для заданного адреса бэкенда.
func NewClient(baseURL string, tokens TokenSource, userAgent string, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "api")
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		tokens:    tokens,
		userAgent: userAgent,
		logger:    logger,
	}
}

// do выполняет один запрос: кодирует тело, подставляет заголовки и токен,
// разбирает статус и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// get — сокращение для GET-запросов.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}
