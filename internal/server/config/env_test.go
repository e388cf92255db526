package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRES_IN", "2d")
	t.Setenv("PASSWORD_SALT", "pepper")
	t.Setenv("HEYGEN_API_KEY", "hg-key")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 48*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, "pepper", c.PasswordSalt)
	assert.Equal(t, "hg-key", c.HeygenAPIKey)
	assert.Equal(t, "media", c.S3Bucket)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, DefaultSecretKey, c.SecretKey)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "forever")

	var c Config
	c.LoadDefaults()
	require.Panics(t, func() { parseEnv(&c) })
}
