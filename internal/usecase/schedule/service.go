package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/digest"
)

// ErrInvalidFireTime возвращается, если время рассылки не в формате HH:MM.
var ErrInvalidFireTime = errors.New("некорректное время рассылки")

// onceTTL ограничивает срок ключа-предохранителя «одна рассылка
// на пояс в сутки». Меньше суток, чтобы ключ не пережил следующий цикл.
const onceTTL = 20 * time.Hour

// AudienceResolver возвращает аудиторию рассылки.
type AudienceResolver interface {
	ListDistinctTimezones() ([]string, error)
	ListRecipients(timezone string) ([]domain.Recipient, error)
	ListFavoriteChannels() ([]domain.Channel, error)
}

// ContentAggregator собирает топ постов по каналам.
type ContentAggregator interface {
	FetchTopItems(ctx context.Context, channels []domain.Channel, countPerChannel int) []domain.ChannelContent
}

// Dispatcher рассылает готовые дайджесты.
type Dispatcher interface {
	Dispatch(ctx context.Context, payloads []domain.DigestPayload) domain.DeliveryReport
}

// trigger хранит один вооружённый триггер: свой cron в локации часового пояса.
type trigger struct {
	timezone string
	spec     string
	cron     *cron.Cron
}

// Service владеет реестром триггеров: ровно один триггер на каждый
// наблюдаемый часовой пояс. Реестр мутируется только через Refresh
// и снятие триггера при опустевшей когорте; обе операции держат mu.
type Service struct {
	mu       sync.Mutex
	triggers map[string]*trigger

	resolver   AudienceResolver
	aggregator ContentAggregator
	dispatcher Dispatcher
	cache      domain.Cache

	fireSpec        string
	itemsPerChannel int
	log             zerolog.Logger
}

// NewService создаёт планировщик. localFireTime задаёт локальное время
// рассылки в формате HH:MM, одинаковое для всех поясов.
// cache опционален: без него предохранитель от повторной рассылки
// в те же сутки не действует.
func NewService(resolver AudienceResolver, aggregator ContentAggregator, dispatcher Dispatcher, cache domain.Cache, localFireTime string, itemsPerChannel int, logger zerolog.Logger) (*Service, error) {
	spec, err := parseFireSpec(localFireTime)
	if err != nil {
		return nil, err
	}
	return &Service{
		triggers:        make(map[string]*trigger),
		resolver:        resolver,
		aggregator:      aggregator,
		dispatcher:      dispatcher,
		cache:           cache,
		fireSpec:        spec,
		itemsPerChannel: itemsPerChannel,
		log:             logger,
	}, nil
}

// Refresh сверяет реестр с текущим набором часовых поясов подписчиков.
// Новые пояса получают триггер, уже вооружённые не трогаются: повторный
// Refresh не перезапускает и не дублирует существующие триггеры.
// При недоступном хранилище расписание остаётся как было.
func (s *Service) Refresh() error {
	timezones, err := s.resolver.ListDistinctTimezones()
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: refresh пропущен, расписание не изменено")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tz := range timezones {
		if _, ok := s.triggers[tz]; ok {
			continue
		}
		if err := s.armLocked(tz); err != nil {
			s.log.Warn().Err(err).Str("timezone", tz).Msg("scheduler: пояс пропущен")
		}
	}
	metrics.TriggersActive.Set(float64(len(s.triggers)))
	return nil
}

// Timezones возвращает пояса с вооружёнными триггерами.
func (s *Service) Timezones() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.triggers))
	for tz := range s.triggers {
		out = append(out, tz)
	}
	return out
}

// Stop останавливает все триггеры. Уже запущенные циклы дорабатывают.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tz, t := range s.triggers {
		t.cron.Stop()
		delete(s.triggers, tz)
	}
	metrics.TriggersActive.Set(0)
}

func (s *Service) armLocked(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("неизвестный часовой пояс: %w", err)
	}
	c := cron.New(cron.WithLocation(loc))
	tz := timezone
	if _, err := c.AddFunc(s.fireSpec, func() { s.fire(tz) }); err != nil {
		return fmt.Errorf("постановка задачи: %w", err)
	}
	c.Start()
	s.triggers[timezone] = &trigger{timezone: timezone, spec: s.fireSpec, cron: c}
	s.log.Info().Str("timezone", timezone).Str("spec", s.fireSpec).Msg("scheduler: триггер вооружён")
	return nil
}

// fire выполняет один цикл доставки для когорты часового пояса.
// Любая ошибка цикла логируется и не снимает триггер: следующая
// попытка будет завтра в то же локальное время.
func (s *Service) fire(timezone string) {
	runID := uuid.NewString()
	start := time.Now()
	logger := s.log.With().Str("run_id", runID).Str("timezone", timezone).Logger()
	metrics.FiresByTimezone.WithLabelValues(timezone).Inc()
	defer func() {
		metrics.FireDuration.Observe(time.Since(start).Seconds())
	}()

	recipients, err := s.resolver.ListRecipients(timezone)
	if err != nil {
		logger.Error().Err(err).Msg("scheduler: цикл пропущен, триггер остаётся активным")
		return
	}
	if len(recipients) == 0 {
		logger.Info().Msg("scheduler: подписчиков не осталось, триггер снимается")
		s.deregister(timezone)
		return
	}

	deliver := func() error {
		return s.deliver(logger, recipients)
	}
	if s.cache != nil {
		key := "digest:" + timezone + ":" + localDate(timezone)
		err = s.cache.Once(key, onceTTL, deliver)
	} else {
		err = deliver()
	}
	if err != nil {
		logger.Error().Err(err).Msg("scheduler: цикл не завершён, триггер остаётся активным")
	}
}

func (s *Service) deliver(logger zerolog.Logger, recipients []domain.Recipient) error {
	ctx := context.Background()

	channels, err := s.resolver.ListFavoriteChannels()
	if err != nil {
		return err
	}
	content := s.aggregator.FetchTopItems(ctx, channels, s.itemsPerChannel)

	payloads := make([]domain.DigestPayload, 0, len(recipients))
	for _, recipient := range recipients {
		payloads = append(payloads, digest.Compose(recipient, content))
	}

	report := s.dispatcher.Dispatch(ctx, payloads)
	logger.Info().Int("sent", report.Sent).Int("failed", len(report.Failed)).Msg("scheduler: рассылка завершена")
	return nil
}

// deregister снимает триггер опустевшего пояса. Если подписчики
// вернутся, следующий Refresh вооружит его заново.
func (s *Service) deregister(timezone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[timezone]
	if !ok {
		return
	}
	t.cron.Stop()
	delete(s.triggers, timezone)
	metrics.TriggersActive.Set(float64(len(s.triggers)))
}

func parseFireSpec(local string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(local))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFireTime, local)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

func localDate(timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Now().UTC().Format("2006-01-02")
	}
	return time.Now().In(loc).Format("2006-01-02")
}
