package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error — ответ бэкенда со статусом >= 400. Message берётся из тела ответа,
// если бэкенд его прислал.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsAPIError выделяет ошибку уровня API из цепочки. Всё остальное,
// возвращаемое клиентом, — сетевые ошибки или ошибки декодирования.
func IsAPIError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized — бэкенд отверг токен.
func IsUnauthorized(err error) bool {
	apiErr, ok := IsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// decodeAPIError разбирает тело ошибки вида {"message": "..."}.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	// Тело ошибки может быть пустым или не-JSON; статус важнее.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	return &Error{StatusCode: resp.StatusCode, Message: body.Message}
}
