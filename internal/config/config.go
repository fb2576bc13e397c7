package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override, e.g. CARROT_JWT_SECRET.
const EnvPrefix = "CARROT"

// Config holds runtime configuration sourced from an optional YAML file,
// the environment, and built-in defaults (in that order of precedence, env first).
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	JWT      JWTConfig      `mapstructure:"jwt" yaml:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Errors   ErrorsConfig   `mapstructure:"errors" yaml:"errors"`
}

type HTTPConfig struct {
	Port         string        `mapstructure:"port" yaml:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gte=0"`
}

type APIConfig struct {
	// BasePath prefixes every business route, e.g. "/api".
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=sqlite postgres"`
	URL        string `mapstructure:"url" yaml:"url,omitempty" validate:"required_if=Driver postgres"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxConns   int32  `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
}

// JWTConfig configures the token codec. ExpirationMs is the token lifetime in
// milliseconds; zero yields tokens that are already expired when issued.
type JWTConfig struct {
	Secret       string `mapstructure:"secret" yaml:"secret" validate:"required,min=32"`
	Issuer       string `mapstructure:"issuer" yaml:"issuer"`
	ExpirationMs int64  `mapstructure:"expiration_ms" yaml:"expiration_ms" validate:"gte=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    string `mapstructure:"port" yaml:"port" validate:"required_if=Enabled true"`
}

type AuthConfig struct {
	// DefaultRole is assigned to every self-registered user and must exist in the role table.
	DefaultRole string `mapstructure:"default_role" yaml:"default_role" validate:"required"`
}

// ErrorsConfig controls how unexpected errors are reported to clients.
// ExposeDetails echoes internal error text with a 404, matching the legacy API.
type ErrorsConfig struct {
	ExposeDetails bool `mapstructure:"expose_details" yaml:"expose_details"`
}

// Default returns a configuration populated with built-in defaults. The JWT
// secret is left empty and must be supplied.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		API: APIConfig{BasePath: "/api"},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "carrot.db",
			MaxConns:   10,
		},
		JWT: JWTConfig{
			Issuer:       "carrot",
			ExpirationMs: 604800000,
		},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: false, Port: "9090"},
		Auth:    AuthConfig{DefaultRole: "ROLE_STAFF"},
	}
}

// Load reads configuration from path (optional), CARROT_* environment
// variables and defaults, then validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setupViper(v)

	if err := readConfigFile(v, path); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	normalize(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and returns a readable error.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.API.BasePath != "" && !strings.HasPrefix(cfg.API.BasePath, "/") {
		return fmt.Errorf("invalid config: api.base_path must start with '/'")
	}
	return nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTP.Port)
}

// MetricsAddress returns the bind address of the metrics listener.
func (c Config) MetricsAddress() string {
	return fmt.Sprintf(":%s", c.Metrics.Port)
}

// TokenTTL converts the configured expiration into a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationMs) * time.Millisecond
}

func setupViper(v *viper.Viper) {
	def := Default()
	v.SetDefault("http.port", def.HTTP.Port)
	v.SetDefault("http.read_timeout", def.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", def.HTTP.WriteTimeout)
	v.SetDefault("http.idle_timeout", def.HTTP.IdleTimeout)
	v.SetDefault("api.base_path", def.API.BasePath)
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", def.Database.SQLitePath)
	v.SetDefault("database.max_conns", def.Database.MaxConns)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", def.JWT.Issuer)
	v.SetDefault("jwt.expiration_ms", def.JWT.ExpirationMs)
	v.SetDefault("cors.allowed_origins", def.CORS.AllowedOrigins)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.port", def.Metrics.Port)
	v.SetDefault("auth.default_role", def.Auth.DefaultRole)
	v.SetDefault("errors.expose_details", def.Errors.ExposeDetails)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments.
	_ = v.BindEnv("http.port", EnvPrefix+"_HTTP_PORT", "PORT")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET")
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		v.SetConfigName("carrot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func normalize(cfg *Config) {
	cfg.API.BasePath = strings.TrimRight(strings.TrimSpace(cfg.API.BasePath), "/")
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)
	cfg.CORS.AllowedOrigins = parseOrigins(cfg.CORS.AllowedOrigins)
}

func parseOrigins(input []string) []string {
	var out []string
	for _, part := range input {
		for _, origin := range strings.Split(part, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
