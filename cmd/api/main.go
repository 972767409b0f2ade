package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/am-small-projects/reddit-newsletter/internal/adapters/mailer"
	"github.com/am-small-projects/reddit-newsletter/internal/adapters/reddit"
	"github.com/am-small-projects/reddit-newsletter/internal/adapters/repo"
	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/cache"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/config"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/db"
	httpinfra "github.com/am-small-projects/reddit-newsletter/internal/infra/http"
	loginfra "github.com/am-small-projects/reddit-newsletter/internal/infra/log"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/audience"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/delivery"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/digest"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := loginfra.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	resolver := audience.NewService(repoAdapter)
	provider := reddit.NewClient(cfg.Reddit.BaseURL, cfg.Reddit.UserAgent)
	aggregator := digest.NewAggregator(provider, logger.With().Str("component", "aggregator").Logger())
	transport := mailer.NewSendGrid("", cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
	dispatcher := delivery.NewDispatcher(transport, logger.With().Str("component", "delivery").Logger())

	var onceGuard domain.Cache
	if cfg.RedisAddr != "" {
		onceGuard = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	scheduler, err := schedule.NewService(resolver, aggregator, dispatcher, onceGuard, cfg.Digest.LocalFireTime, cfg.Digest.ItemsPerChannel, logger.With().Str("component", "scheduler").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("api: планировщик не создан")
	}
	defer scheduler.Stop()

	// Начальная сверка расписания; при недоступной БД сервис всё равно
	// поднимается, расписание доедет со следующим Refresh.
	if err := scheduler.Refresh(); err != nil {
		logger.Warn().Err(err).Msg("api: стартовый refresh не прошёл")
	}

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	registerRoutes(server.Router, repoAdapter, scheduler)

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

type userRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Timezone  string `json:"timezone"`
}

type subscribeRequest struct {
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

type preferencesRequest struct {
	Subscribe string `json:"subscribe"`
}

type favoriteChannelRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// refresher дергается после изменения множества подписчиков.
type refresher interface {
	Refresh() error
}

func registerRoutes(r chi.Router, users domain.UserRepo, scheduler refresher) {
	r.Post("/user", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		var body userRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.Email) == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}
		if !validTimezone(body.Timezone) {
			writeError(w, http.StatusBadRequest, "invalid timezone")
			return
		}
		_, err := users.UpsertUser(domain.User{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Email:     body.Email,
			Timezone:  body.Timezone,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		writeJSON(w, http.StatusOK, "User created successfully")
	})

	r.Patch("/user/{id}", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		var body userRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Timezone != "" && !validTimezone(body.Timezone) {
			writeError(w, http.StatusBadRequest, "invalid timezone")
			return
		}
		if err := users.UpdateUser(id, optional(body.FirstName), optional(body.LastName), optional(body.Email), optional(body.Timezone)); err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		// Смена часового пояса может добавить новый пояс в расписание.
		_ = scheduler.Refresh()
		writeJSON(w, http.StatusCreated, "User updated successfully")
	})

	r.Post("/user/newsletter/subscribe", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		var body subscribeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.Email) == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}
		if !validTimezone(body.Timezone) {
			writeError(w, http.StatusBadRequest, "invalid timezone")
			return
		}
		_, err := users.UpsertUser(domain.User{Email: body.Email, Timezone: body.Timezone, Subscribed: true})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		_ = scheduler.Refresh()
		writeJSON(w, http.StatusOK, "User subscribed to Newsletter")
	})

	r.Patch("/user/{email}/newsletter/preferences", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		var body preferencesRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email := chi.URLParam(req, "email")
		subscribed := body.Subscribe == "yes"
		if err := users.SetSubscription(email, subscribed); err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		_ = scheduler.Refresh()
		writeJSON(w, http.StatusCreated, "User preferences updated successfully")
	})

	r.Post("/user/{id}/favorites/reddit/channel", func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		var body favoriteChannelRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.URL) == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if _, err := users.AddFavoriteChannel(id, body.Type, body.URL); err != nil {
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}
		writeJSON(w, http.StatusOK, "Added favorite reddit channel")
	})
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func validTimezone(tz string) bool {
	if strings.TrimSpace(tz) == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
