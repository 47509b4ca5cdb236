package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"barterhub/internal/logger"
)

// Env holds infrastructure settings. Business tunables live in the config table.
type Env struct {
	Mode    string   `env:"API_MODE" envDefault:"production"`
	Origins []string `env:"API_ORIGINS" envDefault:"*" envSeparator:","`

	// CIDRs of reverse proxies whose X-Forwarded-For is believed. Empty means the peer address is used.
	TrustedProxies []string `env:"API_TRUSTED_PROXIES" envSeparator:","`

	DBDSN              string `env:"DB_DSN,required"`
	DBPassword         string `env:"DB_PASSWORD"`
	DBDSNReadonly      string `env:"DB_DSN_READONLY"`
	DBPasswordReadonly string `env:"DB_PASSWORD_READONLY"`

	RedisDB      string `env:"REDIS_DB" envDefault:"redis://localhost:6379/0"`
	RedisCache   string `env:"REDIS_CACHE" envDefault:"redis://localhost:6379/1"`
	RedisLimiter string `env:"REDIS_LIMITER" envDefault:"redis://localhost:6379/2"`
	RedisMutex   string `env:"REDIS_MUTEX" envDefault:"redis://localhost:6379/3"`

	JWTSecret  string `env:"JWT_SECRET"`
	CronSecret string `env:"CRON_SECRET"`

	ClaimLockTimeout      time.Duration `env:"CLAIM_LOCK_TIMEOUT" envDefault:"3s"`
	ClaimStatementTimeout time.Duration `env:"CLAIM_STATEMENT_TIMEOUT" envDefault:"5s"`
	HTTPTimeout           time.Duration `env:"OUTBOUND_HTTP_TIMEOUT" envDefault:"10s"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	InstagramGraphURL string `env:"INSTAGRAM_GRAPH_URL" envDefault:"https://graph.instagram.com"`
	TikTokAPIURL      string `env:"TIKTOK_API_URL" envDefault:"https://open.tiktokapis.com/v2"`
	CommerceAPIURL    string `env:"COMMERCE_API_URL"`
	CommerceAPIKey    string `env:"COMMERCE_API_KEY"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@barterhub.local"`

	BotToken        string `env:"BOT_TOKEN"`
	AlertChatID     int64  `env:"ALERT_CHAT_ID"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"barterhub"`

	Log logger.LogConfig
}

func Parse() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if e.DBDSNReadonly == "" {
		e.DBDSNReadonly = e.DBDSN
		e.DBPasswordReadonly = e.DBPassword
	}
	return &e, nil
}
