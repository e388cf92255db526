package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/daleavatar/internal/flagx"
	"github.com/dmitrijs2005/daleavatar/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "7d"/"30s" strings or integer nanoseconds. Absent keys leave the
// corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	PasswordSalt          *string         `json:"password_salt"`
	HeygenAPIKey          *string         `json:"heygen_api_key"`
	HeygenBaseURL         *string         `json:"heygen_base_url"`
	ProviderTimeout       *timex.Duration `json:"provider_timeout"`
	S3AccessKeyID         *string         `json:"s3_access_key_id"`
	S3SecretAccessKey     *string         `json:"s3_secret_access_key"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	CORSAllowedOrigins    []string        `json:"cors_allowed_origins"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics: a broken config file is a
// deployment error, not something to run with.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordSalt, c.PasswordSalt)
	setString(&config.HeygenAPIKey, c.HeygenAPIKey)
	setString(&config.HeygenBaseURL, c.HeygenBaseURL)
	setString(&config.S3AccessKeyID, c.S3AccessKeyID)
	setString(&config.S3SecretAccessKey, c.S3SecretAccessKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ProviderTimeout != nil {
		config.ProviderTimeout = c.ProviderTimeout.Duration
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
