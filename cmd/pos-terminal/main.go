package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/app"
	"github.com/vladislavdragonenkov/pos-terminal/internal/version"
)

// setupLogger настраивает формат и уровень логирования терминала.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if v := os.Getenv("POS_LOG_LEVEL"); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			log.WithField("value", v).Warn("unknown POS_LOG_LEVEL, keeping info")
			return
		}
		log.SetLevel(level)
	}
}

// loadDotEnv подхватывает .env в режиме разработки; отсутствие файла не ошибка.
func loadDotEnv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env not loaded, using process environment")
	}
}

// readConfig формирует конфигурацию, позволяя переопределить значения через переменные окружения.
func readConfig() app.Config {
	cfg := app.DefaultConfig()
	if v := os.Getenv("POS_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("POS_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("POS_SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv("POS_WS_URL"); v != "" {
		cfg.WebsocketURL = v
	}
	if v := os.Getenv("POS_HEALTH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HealthTimeout = d
		} else {
			log.WithField("value", v).Warn("invalid POS_HEALTH_TIMEOUT, keeping default")
		}
	}
	return cfg
}

func main() {
	loadDotEnv()
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"backend_url":  cfg.BackendURL,
		"metrics_addr": cfg.MetricsAddr,
		"version":      version.String(),
	}).Info("запускаем POS-терминал")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("POS-терминал остановлен")
}
