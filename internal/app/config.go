package app

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config описывает минимальные настройки запуска терминала.
type Config struct {
	// BackendURL — базовый адрес REST API бэкенда.
	BackendURL string
	// MetricsAddr — адрес HTTP-сервера метрик и health-проверок.
	MetricsAddr string
	// SessionFile — путь к файлу сохранённой сессии.
	SessionFile string
	// WebsocketURL — адрес канала уведомлений; пустая строка отключает его.
	WebsocketURL string
	// HealthTimeout ограничивает проверку доступности бэкенда.
	HealthTimeout time.Duration

	// Input и Output подменяются в тестах; nil означает stdin/stdout.
	Input  io.Reader
	Output io.Writer
}

// DefaultConfig возвращает базовые настройки терминала.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		BackendURL:    "http://localhost:8000/api",
		MetricsAddr:   ":9090",
		SessionFile:   filepath.Join(home, ".pos-terminal", "session.json"),
		HealthTimeout: 5 * time.Second,
	}
}
