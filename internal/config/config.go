package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// MemoryURI selects the embedded in-memory document store instead of MongoDB.
const MemoryURI = "memory://"

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Redis      RedisConfig      `koanf:"redis"`
	Auth       AuthConfig       `koanf:"auth"`
	Content    ContentConfig    `koanf:"content"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	Facebook   FacebookConfig   `koanf:"facebook"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ServerConfig struct {
	Port           string        `koanf:"port"`
	Environment    string        `koanf:"environment"` // production, development, test
	AllowedOrigins []string      `koanf:"allowed_origins"`
	TrustProxy     bool          `koanf:"trust_proxy"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"` // used when the URI carries no database name
}

type RedisConfig struct {
	URI string `koanf:"uri"` // empty disables Redis-backed features
}

type AuthConfig struct {
	TokenTTL time.Duration `koanf:"token_ttl"`
}

type ContentConfig struct {
	PostPageSize            int      `koanf:"post_page_size"`
	CommentPageSize         int      `koanf:"comment_page_size"`
	DefaultInterests        []string `koanf:"default_interests"`
	DefaultShortDescription string   `koanf:"default_short_description"`
}

type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name"`
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	Folder    string `koanf:"folder"`
}

// Enabled reports whether all credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type FacebookConfig struct {
	AppID     string        `koanf:"app_id"`
	AppSecret string        `koanf:"app_secret"`
	GraphURL  string        `koanf:"graph_url"`
	Timeout   time.Duration `koanf:"timeout"`
}

type RateLimitConfig struct {
	Disabled      bool          `koanf:"disabled"`
	Requests      int           `koanf:"requests"`
	Window        time.Duration `koanf:"window"`
	WriteRequests int           `koanf:"write_requests"` // per IP per minute on content creation routes
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Default returns the configuration used before any file or environment overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Environment:    "development",
			AllowedOrigins: []string{"http://localhost:3000"},
			RequestTimeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017/lighttribe",
			Database: "lighttribe",
		},
		Redis: RedisConfig{
			URI: "redis://localhost:6379/0",
		},
		Auth: AuthConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
		Content: ContentConfig{
			PostPageSize:            20,
			CommentPageSize:         40,
			DefaultInterests:        []string{"yoga", "meditation"},
			DefaultShortDescription: "I love lightTribe",
		},
		Cloudinary: CloudinaryConfig{
			Folder: "lighttribe",
		},
		Facebook: FacebookConfig{
			GraphURL: "https://graph.facebook.com",
			Timeout:  10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests:      120,
			Window:        time.Minute,
			WriteRequests: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env, then layers defaults, an optional YAML file and the
// environment, and validates the result.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Server.Environment = strings.ToLower(strings.TrimSpace(cfg.Server.Environment))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"port":                      "server.port",
	"env":                       "server.environment",
	"allowed_origins":           "server.allowed_origins",
	"trust_proxy":               "server.trust_proxy",
	"request_timeout":           "server.request_timeout",
	"mongodb_uri":               "mongo.uri",
	"mongo_uri":                 "mongo.uri",
	"mongodb_database":          "mongo.database",
	"redis_uri":                 "redis.uri",
	"token_ttl":                 "auth.token_ttl",
	"posts_page_size":           "content.post_page_size",
	"comments_page_size":        "content.comment_page_size",
	"default_interests":         "content.default_interests",
	"default_short_description": "content.default_short_description",
	"cloudinary_cloud_name":     "cloudinary.cloud_name",
	"cloudinary_api_key":        "cloudinary.api_key",
	"cloudinary_api_secret":     "cloudinary.api_secret",
	"cloudinary_folder":         "cloudinary.folder",
	"facebook_app_id":           "facebook.app_id",
	"facebook_app_secret":       "facebook.app_secret",
	"facebook_graph_url":        "facebook.graph_url",
	"facebook_timeout":          "facebook.timeout",
	"rate_limit_disabled":       "rate_limit.disabled",
	"rate_limit_requests":       "rate_limit.requests",
	"rate_limit_window":         "rate_limit.window",
	"rate_limit_write_requests": "rate_limit.write_requests",
	"log_level":                 "logging.level",
	"log_format":                "logging.format",
	"log_caller":                "logging.caller",
}

// envTransformFunc maps known environment variables onto config keys and
// drops everything else.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.allowed_origins",
	"content.default_interests",
}

// processSliceFields splits comma-separated strings coming from the environment.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := parseList(strVal)
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Content.PostPageSize < 1 || c.Content.PostPageSize > 200 {
		errs = append(errs, fmt.Errorf("content.post_page_size must be between 1 and 200, got %d", c.Content.PostPageSize))
	}
	if c.Content.CommentPageSize < 1 {
		errs = append(errs, errors.New("content.comment_page_size must be positive"))
	}
	if len(c.Content.DefaultInterests) == 0 {
		errs = append(errs, errors.New("content.default_interests must not be empty"))
	}
	if c.Facebook.GraphURL != "" {
		if _, err := url.ParseRequestURI(c.Facebook.GraphURL); err != nil {
			errs = append(errs, fmt.Errorf("facebook.graph_url: %w", err))
		}
	}
	if !c.RateLimit.Disabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate_limit requires positive requests and window"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// UseMemoryStore reports whether the embedded document store was requested.
func (c *Config) UseMemoryStore() bool {
	return strings.HasPrefix(c.Mongo.URI, MemoryURI)
}

// DatabaseName returns the database named in the Mongo URI path, falling
// back to Mongo.Database.
func (c *Config) DatabaseName() string {
	if u, err := url.Parse(c.Mongo.URI); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return c.Mongo.Database
}
