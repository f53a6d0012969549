package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	tempFile, err := os.CreateTemp("", "config.env")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tempFile.Name()) })

	_, err = tempFile.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, tempFile.Close())

	return tempFile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
PORT=8080
ENVIRONMENT=development
VERSION=1.0.0
TRUSTED_ORIGINS="http://localhost:3000,http://localhost:3001"
POSTGRES_HOST=localhost
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
JWT_SECRET=secret
JWT_TTL=2h
TTL_POPULAR=5m
RATE_LIMIT_RPS=1.5
`)

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, config.TrustedOrigins)
	assert.Equal(t, "localhost", config.DBHost)
	assert.Equal(t, "testuser", config.DBUser)
	assert.Equal(t, "testpassword", config.DBPassword)
	assert.Equal(t, "testdb", config.DBName)
	assert.Equal(t, "smtp.example.com", config.MailHost)
	assert.Equal(t, 587, config.MailPort)
	assert.Equal(t, "testuser@example.com", config.MailUser)
	assert.Equal(t, "testpassword", config.MailPassword)
	assert.Equal(t, "sender@example.com", config.MailSender)
	assert.Equal(t, "rabbitmq.example.com", config.MQHost)
	assert.Equal(t, "testuser", config.MQUser)
	assert.Equal(t, "testpassword", config.MQPassword)
	assert.Equal(t, "secret", config.JWTSecret)
	assert.Equal(t, 2*time.Hour, config.JWTTTL)
	assert.Equal(t, 5*time.Minute, config.TTLPopular)
	assert.Equal(t, 1.5, config.RateLimitRPS)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(writeConfig(t, "JWT_SECRET=secret\n"))
	require.NoError(t, err)

	assert.Equal(t, "5432", config.DBPort)
	assert.Equal(t, "5672", config.MQPort)
	assert.Empty(t, config.TrustedOrigins)
	assert.True(t, config.CacheEnabled)
	assert.Equal(t, 30*time.Minute, config.TTLDashboard)
	assert.Equal(t, time.Hour, config.TTLPopular)
	assert.Equal(t, 2*time.Hour, config.TTLCategory)
	assert.Equal(t, time.Hour, config.TTLEngagement)
	assert.Equal(t, 4, config.RateLimitBurst)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	config, err := loadConfig(writeConfig(t, "PORT=8080\n"))
	require.NoError(t, err)
	assert.Equal(t, "9090", config.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig("does-not-exist.env")
	assert.Error(t, err)
}
