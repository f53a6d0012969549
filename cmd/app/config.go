package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`

	DBHost       string        `mapstructure:"POSTGRES_HOST"`
	DBPort       string        `mapstructure:"POSTGRES_PORT"`
	DBUser       string        `mapstructure:"POSTGRES_USER"`
	DBPassword   string        `mapstructure:"POSTGRES_PASSWORD"`
	DBName       string        `mapstructure:"POSTGRES_DB"`
	DBMaxOpen    int           `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	DBMaxIdle    int           `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	DBMaxIdleFor time.Duration `mapstructure:"POSTGRES_MAX_IDLE_TIME"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	CacheEnabled  bool          `mapstructure:"CACHE_ENABLED"`
	CacheCleanup  time.Duration `mapstructure:"CACHE_CLEANUP"`
	TTLDashboard  time.Duration `mapstructure:"TTL_DASHBOARD"`
	TTLPopular    time.Duration `mapstructure:"TTL_POPULAR"`
	TTLCategory   time.Duration `mapstructure:"TTL_CATEGORY"`
	TTLEngagement time.Duration `mapstructure:"TTL_ENGAGEMENT"`

	RateLimitEnabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int     `mapstructure:"RATE_LIMIT_BURST"`

	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var configDefaults = map[string]any{
	"PORT":                    "8080",
	"ENVIRONMENT":             "development",
	"VERSION":                 "1.0.0",
	"TRUSTED_ORIGINS":         "",
	"POSTGRES_HOST":           "localhost",
	"POSTGRES_PORT":           "5432",
	"POSTGRES_USER":           "",
	"POSTGRES_PASSWORD":       "",
	"POSTGRES_DB":             "",
	"POSTGRES_MAX_OPEN_CONNS": 25,
	"POSTGRES_MAX_IDLE_CONNS": 25,
	"POSTGRES_MAX_IDLE_TIME":  "15m",
	"MAIL_HOST":               "",
	"MAIL_PORT":               587,
	"MAIL_USER":               "",
	"MAIL_PASSWORD":           "",
	"MAIL_SENDER":             "",
	"RABBITMQ_HOST":           "localhost",
	"RABBITMQ_PORT":           "5672",
	"RABBITMQ_USER":           "",
	"RABBITMQ_PASSWORD":       "",
	"JWT_SECRET":              "",
	"JWT_TTL":                 "24h",
	"CACHE_ENABLED":           true,
	"CACHE_CLEANUP":           "10m",
	"TTL_DASHBOARD":           "30m",
	"TTL_POPULAR":             "1h",
	"TTL_CATEGORY":            "2h",
	"TTL_ENGAGEMENT":          "1h",
	"RATE_LIMIT_ENABLED":      true,
	"RATE_LIMIT_RPS":          2,
	"RATE_LIMIT_BURST":        4,
	"TLS_CERT_FILE":           "",
	"TLS_KEY_FILE":            "",
}

// loadConfig reads the env file at path. Process environment variables override the file.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.TrustedOrigins = trimOrigins(config.TrustedOrigins)

	return &config, nil
}

func trimOrigins(origins []string) []string {
	trusted := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			trusted = append(trusted, o)
		}
	}

	return trusted
}
