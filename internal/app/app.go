package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/api"
	"github.com/vladislavdragonenkov/pos-terminal/internal/cart"
	"github.com/vladislavdragonenkov/pos-terminal/internal/catalog"
	"github.com/vladislavdragonenkov/pos-terminal/internal/health"
	"github.com/vladislavdragonenkov/pos-terminal/internal/metrics"
	"github.com/vladislavdragonenkov/pos-terminal/internal/notify"
	"github.com/vladislavdragonenkov/pos-terminal/internal/session"
	"github.com/vladislavdragonenkov/pos-terminal/internal/terminal"
	"github.com/vladislavdragonenkov/pos-terminal/internal/version"
)

// Run собирает зависимости и запускает командный цикл терминала.
// Возвращается после выхода оператора или отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	sess := session.NewStore(cfg.SessionFile, log.WithField("component", "session"))
	if err := sess.Load(); err != nil {
		logger.WithError(err).Warn("failed to load stored session, starting unauthenticated")
	}

	client := api.NewClient(cfg.BackendURL, sess, version.UserAgent(), log.WithField("component", "api"))

	fetchMetrics := metrics.NewFetchMetrics()
	catalogStore := catalog.NewStore(client, fetchMetrics, log.WithField("component", "catalog"))
	defer catalogStore.Close()

	cartStore := cart.NewStore(catalogStore, log.WithField("component", "cart"))

	healthHandler := health.NewHandler(version.String())
	healthHandler.RegisterChecker("backend", health.NewBackendChecker("backend", client, cfg.HealthTimeout))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	if cfg.WebsocketURL != "" {
		notifyLogger := log.WithField("component", "notify")
		listener := notify.NewListener(cfg.WebsocketURL, sess, func(ev notify.Event) {
			notifyLogger.WithFields(log.Fields{
				"channel": ev.Channel,
				"event":   ev.Event,
			}).Info("backend notification")
		}, notifyLogger)
		go listener.Run(ctx)
	}

	in, out := cfg.Input, cfg.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	term := terminal.New(in, out, client, sess, catalogStore, cartStore, log.WithField("component", "terminal"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- term.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, завершаем терминал")
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проверок.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
