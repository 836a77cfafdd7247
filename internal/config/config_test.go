package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("TRUST_PROXY", "")
	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 600*time.Second, cfg.OTPTTL)
	assert.Equal(t, "token", cfg.AuthCookieName)
	assert.False(t, cfg.AuthRejectBlocked)
	assert.True(t, cfg.RecoveryRequireVerified)
	assert.Equal(t, "dynamo", cfg.TicketStore)
	assert.Empty(t, cfg.JWTSecret)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_JWTSecretPrefersNewName(t *testing.T) {
	t.Setenv("JWT_SECRET", "primary")
	t.Setenv("SECRET_KEY", "legacy")
	cfg := Load()

	assert.Equal(t, "primary", cfg.JWTSecret)
	assert.False(t, cfg.JWTSecretFromLegacy)
}

func TestLoad_JWTSecretLegacyFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SECRET_KEY", "legacy")
	cfg := Load()

	assert.Equal(t, "legacy", cfg.JWTSecret)
	assert.True(t, cfg.JWTSecretFromLegacy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("AUTH_REJECT_BLOCKED", "true")
	t.Setenv("RECOVERY_REQUIRE_VERIFIED", "false")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("OTP_TTL_SECONDS", "not-a-number")
	t.Setenv("TRUST_PROXY", "true")
	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.AuthRejectBlocked)
	assert.False(t, cfg.RecoveryRequireVerified)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 600*time.Second, cfg.OTPTTL)
	assert.True(t, cfg.TrustProxy)
}
