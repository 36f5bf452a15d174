package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("DB_CONN", "")
	t.Setenv("DIGEST_SCHEDULE", "")
	t.Setenv("ALERT_EMAILS", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DBConn)
	assert.Equal(t, "artifacts/fraud_model.json", cfg.ModelPath)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.False(t, cfg.RequireAuth)
	assert.False(t, cfg.MailEnabled())
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("ALERT_EMAILS", "risk@example.com, ops@example.com ,")
	t.Setenv("DIGEST_SCHEDULE", "0 8 * * *")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"risk@example.com", "ops@example.com"}, cfg.AlertEmails)
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, "0 8 * * *", cfg.DigestSchedule)
}

func TestNewConfig_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"empty secret":   {"JWT_SECRET", ""},
		"empty model":    {"MODEL_PATH", ""},
		"bad bool":       {"AUTO_MIGRATE", "maybe"},
		"bad duration":   {"READ_TIMEOUT", "ten seconds"},
		"bad cron spec":  {"DIGEST_SCHEDULE", "every morning"},
		"bad jwt ttl":    {"JWT_TTL", "1 day"},
		"bad require":    {"REQUIRE_AUTH", "yes please"},
		"bad write time": {"WRITE_TIMEOUT", "-"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
