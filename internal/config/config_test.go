package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Vision.Timeout)
	assert.Equal(t, 10, cfg.Vision.Concurrency)
	assert.Equal(t, time.Hour, cfg.Vision.CacheTTL)
	assert.Equal(t, 0.80, cfg.Pipeline.MatchThreshold)
	assert.Equal(t, 4, cfg.Pipeline.RoomCapacity)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("VISION_CONCURRENCY", "3")
	t.Setenv("MATCH_THRESHOLD", "0.9")
	t.Setenv("ROOM_CAPACITY", "3")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Vision.Concurrency)
	assert.Equal(t, 0.9, cfg.Pipeline.MatchThreshold)
	assert.Equal(t, 3, cfg.Pipeline.RoomCapacity)
}

// malformed numbers fall back to defaults instead of failing startup
func TestLoadInvalidNumbers(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("MATCH_THRESHOLD", "high")

	cfg := Load()

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 0.80, cfg.Pipeline.MatchThreshold)
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret",
		Database: "jamaah", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=jamaah sslmode=disable",
		c.GetDSN(),
	)
}
