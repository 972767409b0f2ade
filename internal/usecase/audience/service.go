package audience

import (
	"fmt"
	"strings"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

// Service отвечает за выборку аудитории рассылки: часовые пояса,
// получатели когорты и избранные каналы подписчиков.
type Service struct {
	repo domain.RecipientRepo
}

// NewService создаёт сервис аудитории.
func NewService(repo domain.RecipientRepo) *Service {
	return &Service{repo: repo}
}

// ListDistinctTimezones возвращает часовые пояса подписанных получателей.
// Пустой срез при отсутствии подписчиков ошибкой не считается.
func (s *Service) ListDistinctTimezones() ([]string, error) {
	raw, err := s.repo.DistinctTimezones()
	if err != nil {
		return nil, fmt.Errorf("%w: выборка часовых поясов: %v", domain.ErrStoreUnavailable, err)
	}
	seen := make(map[string]struct{}, len(raw))
	timezones := make([]string, 0, len(raw))
	for _, tz := range raw {
		tz = strings.TrimSpace(tz)
		if tz == "" {
			continue
		}
		if _, ok := seen[tz]; ok {
			continue
		}
		seen[tz] = struct{}{}
		timezones = append(timezones, tz)
	}
	return timezones, nil
}

// ListRecipients возвращает подписанных получателей одного часового пояса.
func (s *Service) ListRecipients(timezone string) ([]domain.Recipient, error) {
	raw, err := s.repo.RecipientsByTimezone(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: выборка получателей %s: %v", domain.ErrStoreUnavailable, timezone, err)
	}
	seen := make(map[string]struct{}, len(raw))
	recipients := make([]domain.Recipient, 0, len(raw))
	for _, r := range raw {
		if r.Email == "" {
			continue
		}
		if _, ok := seen[r.Email]; ok {
			continue
		}
		seen[r.Email] = struct{}{}
		recipients = append(recipients, r)
	}
	return recipients, nil
}

// ListFavoriteChannels возвращает каналы из избранного подписанных
// получателей, без дублей по паре (тип, URL).
func (s *Service) ListFavoriteChannels() ([]domain.Channel, error) {
	raw, err := s.repo.FavoriteChannels()
	if err != nil {
		return nil, fmt.Errorf("%w: выборка каналов: %v", domain.ErrStoreUnavailable, err)
	}
	seen := make(map[domain.Channel]struct{}, len(raw))
	channels := make([]domain.Channel, 0, len(raw))
	for _, ch := range raw {
		if ch.SourceURL == "" {
			continue
		}
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		channels = append(channels, ch)
	}
	return channels, nil
}
