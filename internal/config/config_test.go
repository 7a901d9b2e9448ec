package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Env:        "development",
		Port:       "8460",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBPassword: "secure-password",
		DBSSLMode:  "disable",
		RedisURL:   "redis://localhost:6379",
	}
}

func TestConfig_Validate_Required(t *testing.T) {
	c := baseConfig()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = baseConfig()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())
}

func TestConfig_Validate_Production(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Default JWT secret", func(c *Config) { c.JWTSecret = "your-secret-key-change-in-production" }, true},
		{"Short JWT secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default DB password", func(c *Config) { c.DBPassword = "password" }, true},
		{"SSL disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Hardened", func(c *Config) { c.DBSSLMode = "verify-full" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseConfig()
			c.Env = "production"
			c.DBSSLMode = "require"
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_SSLModeNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.NotEmpty(t, c.Port)
	assert.Equal(t, "development", c.Env)
	assert.False(t, c.TracingEnabled)
}
