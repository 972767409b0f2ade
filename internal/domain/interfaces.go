package domain

import (
	"context"
	"time"
)

// RecipientRepo выполняет выборки для цикла доставки.
type RecipientRepo interface {
	DistinctTimezones() ([]string, error)
	RecipientsByTimezone(timezone string) ([]Recipient, error)
	FavoriteChannels() ([]Channel, error)
}

// UserRepo управляет подписчиками со стороны HTTP API.
type UserRepo interface {
	UpsertUser(user User) (User, error)
	UpdateUser(id int64, firstName, lastName, email, timezone *string) error
	SetSubscription(email string, subscribed bool) error
	AddFavoriteChannel(userID int64, channelType, channelURL string) (int64, error)
}

// ContentProvider возвращает топ постов одного канала.
type ContentProvider interface {
	FetchTop(ctx context.Context, sourceURL string, limit int) ([]ContentItem, error)
}

// Transport отправляет письмо. Подтверждения доставки транспорт не ждёт.
type Transport interface {
	Send(ctx context.Context, email OutboundEmail) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
