package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса рассылки.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	SendGrid struct {
		APIKey   string `envconfig:"SENDGRID_API_KEY"`
		From     string `envconfig:"MAIL_FROM" default:"info@reddit-newsletter.com"`
		FromName string `envconfig:"MAIL_FROM_NAME" default:"Reddit Newsletter"`
	} `envconfig:""`

	Reddit struct {
		BaseURL   string `envconfig:"REDDIT_BASE_URL" default:"https://www.reddit.com"`
		UserAgent string `envconfig:"REDDIT_USER_AGENT" default:"reddit-newsletter/1.0"`
	} `envconfig:""`

	Digest struct {
		// LocalFireTime задаёт локальное время рассылки, единственный
		// настраиваемый параметр расписания.
		LocalFireTime   string `envconfig:"DIGEST_LOCAL_FIRE_TIME" default:"08:00"`
		ItemsPerChannel int    `envconfig:"DIGEST_ITEMS_PER_CHANNEL" default:"3"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
