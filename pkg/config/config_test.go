package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOVEL_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddress())
	assert.True(t, cfg.AuditEnabled)
	for _, attr := range cfg.Attributes() {
		assert.Equal(t, SourceDefault, attr.Source, attr.Name)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := writeConfig(t, `
jwt_secret: from-file-from-file-from-file-123
token_ttl: 3600
port: 9000
audit_enabled: false
permission_cache_ttl: 0
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("SHOVEL_CONFIG_PATH", dir)
	t.Setenv("SHOVEL_PORT", "9100")
	t.Setenv("SHOVEL_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, 9100, cfg.Port)
	assert.False(t, cfg.AuditEnabled)
	assert.Zero(t, cfg.PermissionCacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)

	assert.Equal(t, SourceFile, cfg.Source("token_ttl"))
	assert.Equal(t, SourceFile, cfg.Source("audit_enabled"))
	assert.Equal(t, SourceFile, cfg.Source("permission_cache_ttl"))
	assert.Equal(t, SourceEnvironment, cfg.Source("port"))
	assert.Equal(t, SourceEnvironment, cfg.Source("log_level"))
	assert.Equal(t, SourceDefault, cfg.Source("bind_address"))
	assert.Equal(t, SourceDefault, cfg.Source("unknown"))
}

func TestLoadInvalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		t.Setenv("SHOVEL_CONFIG_PATH", writeConfig(t, "port: [oops"))
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("bad env integer", func(t *testing.T) {
		t.Setenv("SHOVEL_CONFIG_PATH", t.TempDir())
		t.Setenv("SHOVEL_TOKEN_TTL", "eight hours")
		_, err := Load()
		assert.ErrorContains(t, err, "SHOVEL_TOKEN_TTL")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.JWTSecret = testSecret
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "jwt_secret"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "token_ttl"},
		{"zero limit", func(c *Config) { c.APIListLimitMax = 0 }, "api_list_limit_max"},
		{"negative cache ttl", func(c *Config) { c.PermissionCacheTTL = -1 }, "permission_cache_ttl"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad proxy", func(c *Config) { c.TrustedProxies = []string{"nope"} }, "trusted_proxies"},
		{"bad authenticator", func(c *Config) { c.Authenticators = []string{"authn-ldap"} }, "authenticator"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestClampLimit(t *testing.T) {
	cfg := Default()
	cfg.APIListLimitMax = 100

	assert.Equal(t, 100, cfg.ClampLimit(0))
	assert.Equal(t, 100, cfg.ClampLimit(-5))
	assert.Equal(t, 25, cfg.ClampLimit(25))
	assert.Equal(t, 100, cfg.ClampLimit(1000))
}

func TestIsAuthenticatorEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsAuthenticatorEnabled("authn"))
	assert.True(t, cfg.IsAuthenticatorEnabled("authn-jwt"))

	cfg.Authenticators = []string{"authn-jwt"}
	assert.False(t, cfg.IsAuthenticatorEnabled("authn"))
}

func TestFormatHidesSecret(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = testSecret

	text := cfg.FormatText()
	assert.NotContains(t, text, testSecret)
	assert.Contains(t, text, "(hidden)")
	assert.True(t, strings.HasPrefix(text, "Config file:"))

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, testSecret)

	var doc struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Attributes, len(attributeNames()))
}
