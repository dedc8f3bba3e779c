package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/shovel-heroes"
	ConfigFileName    = "shovel.yml"
	EnvPrefix         = "SHOVEL_"
)

// Attribute sources
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// MinSecretLength is the shortest accepted jwt_secret, in bytes.
const MinSecretLength = 32

// ValidAuthenticators is the list of valid authenticator names
var ValidAuthenticators = []string{"authn", "authn-jwt"}

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all Shovel Heroes server settings
type Config struct {
	// JWTSecret is the HMAC key for session tokens
	JWTSecret string `yaml:"jwt_secret" json:"-"`

	// TokenTTL is the session token lifetime in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// APIListLimitMax is the maximum page size of list endpoints
	APIListLimitMax int `yaml:"api_list_limit_max" json:"api_list_limit_max"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is believed
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// PermissionsFile is a YAML rule file applied at startup and on change
	PermissionsFile string `yaml:"permissions_file" json:"permissions_file"`

	// PermissionCacheTTL is how long, in seconds, the permission snapshot is
	// trusted before it is reloaded. Zero keeps it until invalidated.
	PermissionCacheTTL int `yaml:"permission_cache_ttl" json:"permission_cache_ttl"`

	// BindAddress is the listen address
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the listen port
	Port int `yaml:"port" json:"port"`

	// Authenticators is a list of enabled authenticators
	Authenticators []string `yaml:"authenticators" json:"authenticators"`

	// AuditEnabled turns the audit trail on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// LogLevel is the application log level
	LogLevel string `yaml:"log_level" json:"log_level"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors Config with pointers so that explicit zero values in
// the file still override defaults.
type fileConfig struct {
	JWTSecret          *string   `yaml:"jwt_secret"`
	TokenTTL           *int      `yaml:"token_ttl"`
	APIListLimitMax    *int      `yaml:"api_list_limit_max"`
	TrustedProxies     *[]string `yaml:"trusted_proxies"`
	PermissionsFile    *string   `yaml:"permissions_file"`
	PermissionCacheTTL *int      `yaml:"permission_cache_ttl"`
	BindAddress        *string   `yaml:"bind_address"`
	Port               *int      `yaml:"port"`
	Authenticators     *[]string `yaml:"authenticators"`
	AuditEnabled       *bool     `yaml:"audit_enabled"`
	LogLevel           *string   `yaml:"log_level"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Default returns a config with default values
func Default() *Config {
	c := &Config{
		TokenTTL:           8 * 60 * 60,
		APIListLimitMax:    500,
		TrustedProxies:     []string{},
		PermissionCacheTTL: 300,
		BindAddress:        "0.0.0.0",
		Port:               8000,
		Authenticators:     []string{"authn", "authn-jwt"},
		AuditEnabled:       true,
		LogLevel:           "info",
		sources:            make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from $SHOVEL_CONFIG_PATH/shovel.yml and SHOVEL_*
// environment variables. Environment variables take precedence over file
// values. A missing file is not an error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	config := Default()
	config.configFilePath = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"jwt_secret", "token_ttl", "api_list_limit_max", "trusted_proxies",
		"permissions_file", "permission_cache_ttl", "bind_address", "port",
		"authenticators", "audit_enabled", "log_level",
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	set := func(name string) { c.sources[name] = SourceFile }

	if file.JWTSecret != nil {
		c.JWTSecret = *file.JWTSecret
		set("jwt_secret")
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		set("token_ttl")
	}
	if file.APIListLimitMax != nil {
		c.APIListLimitMax = *file.APIListLimitMax
		set("api_list_limit_max")
	}
	if file.TrustedProxies != nil {
		c.TrustedProxies = *file.TrustedProxies
		set("trusted_proxies")
	}
	if file.PermissionsFile != nil {
		c.PermissionsFile = *file.PermissionsFile
		set("permissions_file")
	}
	if file.PermissionCacheTTL != nil {
		c.PermissionCacheTTL = *file.PermissionCacheTTL
		set("permission_cache_ttl")
	}
	if file.BindAddress != nil {
		c.BindAddress = *file.BindAddress
		set("bind_address")
	}
	if file.Port != nil {
		c.Port = *file.Port
		set("port")
	}
	if file.Authenticators != nil {
		c.Authenticators = *file.Authenticators
		set("authenticators")
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		set("audit_enabled")
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		set("log_level")
	}
}

func (c *Config) applyEnvConfig() error {
	env := func(name string) (string, bool) {
		val := os.Getenv(EnvPrefix + strings.ToUpper(name))
		if val == "" {
			return "", false
		}
		c.sources[name] = SourceEnvironment
		return val, true
	}
	atoi := func(name string, dst *int) error {
		if val, ok := env(name); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, strings.ToUpper(name), err)
			}
			*dst = i
		}
		return nil
	}

	if val, ok := env("jwt_secret"); ok {
		c.JWTSecret = val
	}
	if err := atoi("token_ttl", &c.TokenTTL); err != nil {
		return err
	}
	if err := atoi("api_list_limit_max", &c.APIListLimitMax); err != nil {
		return err
	}
	if val, ok := env("trusted_proxies"); ok {
		c.TrustedProxies = splitAndTrim(val)
	}
	if val, ok := env("permissions_file"); ok {
		c.PermissionsFile = val
	}
	if err := atoi("permission_cache_ttl", &c.PermissionCacheTTL); err != nil {
		return err
	}
	if val, ok := env("bind_address"); ok {
		c.BindAddress = val
	}
	if err := atoi("port", &c.Port); err != nil {
		return err
	}
	if val, ok := env("authenticators"); ok {
		c.Authenticators = splitAndTrim(val)
	}
	if val, ok := env("audit_enabled"); ok {
		c.AuditEnabled = val == "true" || val == "1"
	}
	if val, ok := env("log_level"); ok {
		c.LogLevel = strings.ToLower(val)
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// SessionTTL returns the session token TTL as a duration
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// CacheTTL returns the permission cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.PermissionCacheTTL) * time.Second
}

// ListenAddress returns host:port
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// IsAuthenticatorEnabled checks if an authenticator is enabled
func (c *Config) IsAuthenticatorEnabled(authenticator string) bool {
	for _, a := range c.Authenticators {
		if a == authenticator {
			return true
		}
	}
	return false
}

// ClampLimit bounds a requested page size. Zero or negative asks for the
// maximum.
func (c *Config) ClampLimit(requested int) int {
	if requested <= 0 || requested > c.APIListLimitMax {
		return c.APIListLimitMax
	}
	return requested
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d bytes", MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %d", c.TokenTTL)
	}
	if c.APIListLimitMax <= 0 {
		return fmt.Errorf("api_list_limit_max must be positive, got %d", c.APIListLimitMax)
	}
	if c.PermissionCacheTTL < 0 {
		return fmt.Errorf("permission_cache_ttl must not be negative, got %d", c.PermissionCacheTTL)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	// Validate trusted proxies are valid CIDR ranges
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	// Validate authenticators
	for _, auth := range c.Authenticators {
		if !contains(ValidAuthenticators, auth) {
			return fmt.Errorf("invalid authenticator: %s", auth)
		}
	}

	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. The session secret is never rendered.
func (c *Config) Attributes() []Attribute {
	secret := ""
	if c.JWTSecret != "" {
		secret = "(hidden)"
	}
	return []Attribute{
		{Name: "jwt_secret", Value: secret, Source: c.Source("jwt_secret")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "api_list_limit_max", Value: strconv.Itoa(c.APIListLimitMax), Source: c.Source("api_list_limit_max")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "permissions_file", Value: c.PermissionsFile, Source: c.Source("permissions_file")},
		{Name: "permission_cache_ttl", Value: strconv.Itoa(c.PermissionCacheTTL), Source: c.Source("permission_cache_ttl")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators, ","), Source: c.Source("authenticators")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
