package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEND_DELAY", "")
	t.Setenv("HARD_BLOCK_CODES", "")
	t.Setenv("EMAIL_PROVIDER", "")

	cfg := Load()

	assert.Equal(t, 4*time.Second, cfg.Dispatch.SendDelay)
	assert.Equal(t, []string{"5.4.6", "429"}, cfg.Dispatch.HardBlockCodes)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "001", cfg.Event.ID)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEND_DELAY", "1500")
	t.Setenv("HARD_BLOCK_CODES", " 5.7.1 , 421,")
	t.Setenv("EMAIL_PROVIDER", "Brevo")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, 1500*time.Millisecond, cfg.Dispatch.SendDelay)
	assert.Equal(t, []string{"5.7.1", "421"}, cfg.Dispatch.HardBlockCodes)
	assert.Equal(t, "brevo", cfg.Email.Provider)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DELAY", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DELAY", time.Second))

	t.Setenv("X_DELAY", "nope")
	assert.Equal(t, time.Second, getEnvDuration("X_DELAY", time.Second))
}
