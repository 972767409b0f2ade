package repo

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.RecipientRepo = (*Postgres)(nil)
var _ domain.UserRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// DistinctTimezones возвращает часовые пояса подписанных пользователей.
func (p *Postgres) DistinctTimezones() ([]string, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT DISTINCT timezone
FROM reddit_newsletter."user"
WHERE subscribed = TRUE AND timezone IS NOT NULL
`)
	metrics.ObserveNetworkRequest("postgres", "distinct_timezones", "user", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var timezones []string
	for rows.Next() {
		var tz string
		if err := rows.Scan(&tz); err != nil {
			return nil, err
		}
		timezones = append(timezones, tz)
	}
	return timezones, rows.Err()
}

// RecipientsByTimezone возвращает подписанных получателей одного пояса.
func (p *Postgres) RecipientsByTimezone(timezone string) ([]domain.Recipient, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT DISTINCT email
FROM reddit_newsletter."user"
WHERE subscribed = TRUE AND timezone = $1
`, timezone)
	metrics.ObserveNetworkRequest("postgres", "recipients_by_timezone", "user", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recipients []domain.Recipient
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		recipients = append(recipients, domain.Recipient{Email: email, Timezone: timezone})
	}
	return recipients, rows.Err()
}

// FavoriteChannels возвращает каналы из избранного подписанных пользователей.
func (p *Postgres) FavoriteChannels() ([]domain.Channel, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT DISTINCT c.channel_type, c.channel_url
FROM reddit_newsletter.reddit_channel c
JOIN reddit_newsletter.reddit_favorites f ON f.channel_id = c.id
JOIN reddit_newsletter."user" u ON u.id = f.user_id
WHERE u.subscribed = TRUE
`)
	metrics.ObserveNetworkRequest("postgres", "favorite_channels", "reddit_channel", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.Type, &ch.SourceURL); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// UpsertUser создаёт пользователя или обновляет его подписку по email.
func (p *Postgres) UpsertUser(user domain.User) (domain.User, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO reddit_newsletter."user" (first_name, last_name, email, timezone, subscribed)
VALUES (NULLIF($1,''), NULLIF($2,''), $3, NULLIF($4,''), $5)
ON CONFLICT (email) DO UPDATE
SET subscribed = EXCLUDED.subscribed,
    timezone   = COALESCE(EXCLUDED.timezone, "user".timezone),
    updated_at = now()
RETURNING id, COALESCE(first_name,''), COALESCE(last_name,''), email, COALESCE(timezone,''), subscribed, created_at, updated_at
`, strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName), strings.TrimSpace(user.Email), strings.TrimSpace(user.Timezone), user.Subscribed)

	var saved domain.User
	err := row.Scan(&saved.ID, &saved.FirstName, &saved.LastName, &saved.Email, &saved.Timezone, &saved.Subscribed, &saved.CreatedAt, &saved.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "user_upsert", "user", start, err)
	if err != nil {
		return domain.User{}, err
	}
	return saved, nil
}

// UpdateUser частично обновляет пользователя: nil-поля остаются как были.
func (p *Postgres) UpdateUser(id int64, firstName, lastName, email, timezone *string) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE reddit_newsletter."user"
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    email      = COALESCE($4, email),
    timezone   = COALESCE($5, timezone),
    updated_at = now()
WHERE id = $1
`, id, firstName, lastName, email, timezone)
	metrics.ObserveNetworkRequest("postgres", "user_update", "user", start, err)
	return err
}

// SetSubscription переключает подписку по email.
func (p *Postgres) SetSubscription(email string, subscribed bool) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE reddit_newsletter."user"
SET subscribed = $2, updated_at = now()
WHERE email = $1
`, email, subscribed)
	metrics.ObserveNetworkRequest("postgres", "user_set_subscription", "user", start, err)
	return err
}

// AddFavoriteChannel сохраняет канал и привязывает его к пользователю.
func (p *Postgres) AddFavoriteChannel(userID int64, channelType, channelURL string) (int64, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	var channelID int64
	err := p.pool.QueryRow(ctx, `
INSERT INTO reddit_newsletter.reddit_channel (channel_type, channel_url)
VALUES ($1, $2)
RETURNING id
`, channelType, channelURL).Scan(&channelID)
	metrics.ObserveNetworkRequest("postgres", "channel_insert", "reddit_channel", start, err)
	if err != nil {
		return 0, err
	}

	start = time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO reddit_newsletter.reddit_favorites (user_id, channel_id)
VALUES ($1, $2)
`, userID, channelID)
	metrics.ObserveNetworkRequest("postgres", "favorite_insert", "reddit_favorites", start, err)
	if err != nil {
		return 0, err
	}
	return channelID, nil
}
