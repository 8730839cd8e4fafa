package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Discovery modes.
const (
	DiscoveryStatic   = "static"
	DiscoveryRegister = "register"
)

// Config holds the docsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Storage   StorageConfig   `yaml:"storage"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" validate:"min=0"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" validate:"min=0"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec" validate:"min=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DiscoveryConfig selects how storage parameters are obtained.
type DiscoveryConfig struct {
	Mode           string `yaml:"mode" validate:"oneof=static register"`
	BackendAddress string `yaml:"backend_address"`
	ModuleName     string `yaml:"module_name"`
	// SelfAddress is announced to the backend when set.
	SelfAddress string `yaml:"self_address"`
	// Schema is the registration response naming: camel or snake. Required in register mode.
	Schema     string `yaml:"schema" validate:"omitempty,oneof=camel snake"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"min=0"` // 0 = no timeout
}

// StorageConfig holds document store settings. Coordinates are used in static mode only.
type StorageConfig struct {
	MongoAddress        string `yaml:"mongo_address"`
	MongoDatabase       string `yaml:"mongo_database"`
	MongoCollection     string `yaml:"mongo_collection"`
	QdrantAddress       string `yaml:"qdrant_address"`
	ConnectTimeoutSec   int    `yaml:"connect_timeout_sec" validate:"min=0"`
	ReadinessTimeoutSec int    `yaml:"readiness_timeout_sec" validate:"min=0"`
	QueryTimeoutSec     int    `yaml:"query_timeout_sec" validate:"min=0"` // 0 = request context only
}

// Coordinates returns the statically configured storage coordinates.
func (s StorageConfig) Coordinates() domain.StorageConfig {
	return domain.StorageConfig{
		MongoAddress:    s.MongoAddress,
		MongoDatabase:   s.MongoDatabase,
		MongoCollection: s.MongoCollection,
		QdrantAddress:   s.QdrantAddress,
	}
}

// Seconds converts a *_sec setting to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, prod).
// Every failure wraps domain.ErrConfiguration.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, configPath, err)
	}
	return Parse(data)
}

// Parse expands environment references in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse: %w", domain.ErrConfiguration, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files (default: ./.env) without overriding the
// process environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: load %s: %w", domain.ErrConfiguration, p, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.Discovery.Mode == "" {
		c.Discovery.Mode = DiscoveryStatic
	}
	if c.Storage.ConnectTimeoutSec <= 0 {
		c.Storage.ConnectTimeoutSec = 10
	}
	if c.Storage.ReadinessTimeoutSec <= 0 {
		c.Storage.ReadinessTimeoutSec = 10
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml keys instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrConfiguration, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	switch c.Discovery.Mode {
	case DiscoveryStatic:
		if err := c.Storage.Coordinates().Validate(); err != nil {
			return fmt.Errorf("storage (static discovery): %w", err)
		}
	case DiscoveryRegister:
		if c.Discovery.BackendAddress == "" {
			return fmt.Errorf("%w: discovery.backend_address is required in register mode", domain.ErrConfiguration)
		}
		if c.Discovery.ModuleName == "" {
			return fmt.Errorf("%w: discovery.module_name is required in register mode", domain.ErrConfiguration)
		}
		if c.Discovery.Schema == "" {
			return fmt.Errorf("%w: discovery.schema is required in register mode (camel or snake)",
				domain.ErrConfiguration)
		}
	}
	return nil
}

// describe renders a validation failure with the yaml path of the field.
func describe(fe validator.FieldError) string {
	path := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (got %v)", path, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s (got %v)", path, fe.Tag(), fe.Value())
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
