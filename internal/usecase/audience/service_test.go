package audience

import (
	"errors"
	"testing"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

type stubRepo struct {
	timezones  []string
	recipients []domain.Recipient
	channels   []domain.Channel
	err        error
}

func (s *stubRepo) DistinctTimezones() ([]string, error) { return s.timezones, s.err }
func (s *stubRepo) RecipientsByTimezone(string) ([]domain.Recipient, error) {
	return s.recipients, s.err
}
func (s *stubRepo) FavoriteChannels() ([]domain.Channel, error) { return s.channels, s.err }

func TestListDistinctTimezonesDeduplicates(t *testing.T) {
	service := NewService(&stubRepo{timezones: []string{"America/Denver", " ", "Europe/Berlin", "America/Denver"}})

	timezones, err := service.ListDistinctTimezones()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(timezones) != 2 {
		t.Fatalf("ожидали 2 пояса, получили %v", timezones)
	}
}

func TestListDistinctTimezonesEmptyIsNotError(t *testing.T) {
	service := NewService(&stubRepo{})

	timezones, err := service.ListDistinctTimezones()
	if err != nil {
		t.Fatalf("пустая выборка не ошибка: %v", err)
	}
	if len(timezones) != 0 {
		t.Fatalf("ожидали пустой список, получили %v", timezones)
	}
}

func TestListDistinctTimezonesStoreError(t *testing.T) {
	service := NewService(&stubRepo{err: errors.New("connection refused")})

	if _, err := service.ListDistinctTimezones(); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("ожидали ErrStoreUnavailable, получили %v", err)
	}
}

func TestListRecipientsDeduplicatesByEmail(t *testing.T) {
	service := NewService(&stubRepo{recipients: []domain.Recipient{
		{Email: "a@example.com", Timezone: "America/Denver"},
		{Email: "a@example.com", Timezone: "America/Denver"},
		{Email: "b@example.com", Timezone: "America/Denver"},
		{Email: ""},
	}})

	recipients, err := service.ListRecipients("America/Denver")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("ожидали 2 получателей, получили %v", recipients)
	}
}

func TestListFavoriteChannelsDeduplicatesByTypeAndURL(t *testing.T) {
	service := NewService(&stubRepo{channels: []domain.Channel{
		{Type: "Tech", SourceURL: "r/technology"},
		{Type: "Tech", SourceURL: "r/technology"},
		{Type: "News", SourceURL: "r/technology"},
		{SourceURL: ""},
	}})

	channels, err := service.ListFavoriteChannels()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("дубли по (тип, URL) должны схлопываться, получили %v", channels)
	}
}
