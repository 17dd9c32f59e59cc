package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "Timisoara", cfg.City)
	assert.Equal(t, 45.70, cfg.MinLatitude)
	assert.Equal(t, 45.81, cfg.MaxLatitude)
	assert.Equal(t, 21.12, cfg.MinLongitude)
	assert.Equal(t, 21.32, cfg.MaxLongitude)
	assert.Equal(t, 0.0001, cfg.CoordTolerance)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CITY_NAME", "Cluj-Napoca")
	t.Setenv("COORD_TOLERANCE", "0.001")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("PORT", "9000")

	cfg := Load()
	assert.Equal(t, "Cluj-Napoca", cfg.City)
	assert.Equal(t, 0.001, cfg.CoordTolerance)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "9000", cfg.Port)
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_HOST", "dbhost")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "urbanai")

	dsn := Load().DSN()
	assert.Contains(t, dsn, "host=dbhost")
	assert.Contains(t, dsn, "user=app")
	assert.Contains(t, dsn, "password=secret")
	assert.Contains(t, dsn, "dbname=urbanai")
}
