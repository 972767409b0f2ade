package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	EmailsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_emails_sent_total",
		Help: "Успешно отправленные письма",
	})
	EmailSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_email_send_errors_total",
		Help: "Ошибки отправки писем",
	})
	ContentFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_content_fetch_errors_total",
		Help: "Ошибки загрузки контента по каналам",
	}, []string{"channel"})
	TriggersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "newsletter_timezone_triggers_active",
		Help: "Активные триггеры по часовым поясам",
	})
	FireDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsletter_fire_duration_seconds",
		Help:    "Длительность одного цикла доставки",
		Buckets: prometheus.DefBuckets,
	})
	FiresByTimezone = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_fires_total",
		Help: "Количество срабатываний триггеров по часовым поясам",
	}, []string{"timezone"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		EmailsSent,
		EmailSendErrors,
		ContentFetchErrors,
		TriggersActive,
		FireDuration,
		FiresByTimezone,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}
