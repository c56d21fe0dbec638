package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOCAL_STORE", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")
	cfg := Load()
	assert.Equal(t, "sqlite", cfg.LocalStore)
	assert.Equal(t, "@every 1m", cfg.PromptSchedule)
	assert.False(t, cfg.Firestore())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo")
	t.Setenv("FIREBASE_AUTH", "true")
	t.Setenv("DASHBOARD_TTL", "90s")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	cfg := Load()
	assert.True(t, cfg.Firestore())
	assert.True(t, cfg.FirebaseAuth)
	assert.Equal(t, 90*time.Second, cfg.DashboardTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("PROMPT_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")
	t.Setenv("FIREBASE_AUTH", "maybe")
	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.PromptTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.False(t, cfg.FirebaseAuth)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "UTC", App{TimeZone: "UTC"}.Location().String())
	assert.Equal(t, time.Local, App{TimeZone: "Not/AZone"}.Location())
}
