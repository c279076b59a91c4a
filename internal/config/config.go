package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Env      string
	Debug    bool
	LogLevel string

	DBUrl      string
	ServerPort string
	Timezone   string

	JWTSecret       string
	JWTAlgorithm    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSOrigins []string

	CacheEnabled bool
	RedisURL     string

	CheckEmailDomain bool

	// AppBaseURL is the booking front end that share links point at.
	AppBaseURL string

	AdminEmail    string
	AdminPassword string

	S3 S3Config
	MP  MercadoPagoConfig

	Twilio TwilioConfig
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Enabled reports whether uploads can be sent to a bucket.
func (s S3Config) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

type MercadoPagoConfig struct {
	AccessToken       string
	NotificationURL   string
	BackURL           string
	SubscriptionPrice decimal.Decimal
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

func Load() *Config {
	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		Debug:    getBool("DEBUG", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBUrl:      getEnv("DATABASE_URL", "sqlite://salon.db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Timezone:   getEnv("TIMEZONE", "America/Sao_Paulo"),

		JWTSecret:       getEnv("JWT_SECRET", "changeme"),
		JWTAlgorithm:    getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenTTL:  time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getInt("REFRESH_TOKEN_EXPIRE_HOURS", 24)) * time.Hour,

		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		CacheEnabled: getBool("CACHE_ENABLED", false),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),

		CheckEmailDomain: getBool("CHECK_EMAIL_DOMAIN", false),

		AppBaseURL: strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8000"), "/"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		S3: S3Config{
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},

		MP: MercadoPagoConfig{
			AccessToken:       getEnv("MP_ACCESS_TOKEN", ""),
			NotificationURL:   getEnv("MP_NOTIFICATION_URL", ""),
			BackURL:           getEnv("MP_BACK_URL", ""),
			SubscriptionPrice: getDecimal("SUBSCRIPTION_PRICE", decimal.NewFromInt(49)),
		},

		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}
