package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/dmitrijs2005/daleavatar/internal/timex"
)

// envKeys maps recognised environment variables to koanf keys.
var envKeys = map[string]string{
	"PORT":                 "port",
	"DATABASE_DSN":         "database_dsn",
	"JWT_SECRET":           "jwt_secret",
	"JWT_EXPIRES_IN":       "jwt_expires_in",
	"PASSWORD_SALT":        "password_salt",
	"HEYGEN_API_KEY":       "heygen_api_key",
	"HEYGEN_BASE_URL":      "heygen_base_url",
	"PROVIDER_TIMEOUT":     "provider_timeout",
	"S3_ACCESS_KEY_ID":     "s3_access_key_id",
	"S3_SECRET_ACCESS_KEY": "s3_secret_access_key",
	"S3_BUCKET":            "s3_bucket",
	"S3_REGION":            "s3_region",
	"S3_BASE_ENDPOINT":     "s3_base_endpoint",
	"CORS_ALLOWED_ORIGINS": "cors_allowed_origins",
}

// envTransform drops every variable we do not know about.
func envTransform(key string) string {
	return envKeys[key]
}

// parseEnv overlays values from the process environment. Empty variables
// are treated as unset. Malformed durations panic, like malformed flags.
func parseEnv(config *Config) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		panic(err)
	}

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(k.String(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(k.String(key)); v != "" {
			d, err := timex.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	if port := strings.TrimSpace(k.String("port")); port != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(port, ":")
	}
	str("database_dsn", &config.DatabaseDSN)
	str("jwt_secret", &config.SecretKey)
	dur("jwt_expires_in", &config.TokenValidityDuration)
	str("password_salt", &config.PasswordSalt)
	str("heygen_api_key", &config.HeygenAPIKey)
	str("heygen_base_url", &config.HeygenBaseURL)
	dur("provider_timeout", &config.ProviderTimeout)
	str("s3_access_key_id", &config.S3AccessKeyID)
	str("s3_secret_access_key", &config.S3SecretAccessKey)
	str("s3_bucket", &config.S3Bucket)
	str("s3_region", &config.S3Region)
	str("s3_base_endpoint", &config.S3BaseEndpoint)

	if origins := splitList(k.String("cors_allowed_origins")); len(origins) > 0 {
		config.CORSAllowedOrigins = origins
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
