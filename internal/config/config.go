// Package config loads the uiengineer configuration from a YAML or JSON file
// and UIENGINEER_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no file is given. It may be absent.
const DefaultPath = "uiengineer.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Orchestrator providers.
const (
	ProviderLLM    = "llm"
	ProviderStatic = "static"
)

// Config is the full service configuration.
type Config struct {
	Listen       string             `mapstructure:"listen"`
	Title        string             `mapstructure:"title"`
	CORSOrigins  []string           `mapstructure:"cors_origins"`
	Log          LogConfig          `mapstructure:"log"`
	Store        StoreConfig        `mapstructure:"store"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Lock         LockConfig         `mapstructure:"lock"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the directory (file) or database file (bolt).
	Path string `mapstructure:"path"`
	// DSN is the SQLite data source name.
	DSN   string      `mapstructure:"dsn"`
	Redis RedisConfig `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// Redact lists regular expressions masked out of stored text.
	Redact []string `mapstructure:"redact"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OrchestratorConfig struct {
	Provider    string        `mapstructure:"provider"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type LockConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// Distributed enables the Redis locker; it requires store.redis.addr.
	Distributed bool `mapstructure:"distributed"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Listen: ":8080",
		Title:  "UI Engineer",
		Log:    LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    ".uiengineer/apps",
			DSN:     "uiengineer.db",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Orchestrator: OrchestratorConfig{
			Provider:    ProviderLLM,
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     90 * time.Second,
		},
		Lock: LockConfig{TTL: 2 * time.Minute},
	}
}

// envKeys maps environment variables to configuration paths.
var envKeys = map[string]string{
	"UIENGINEER_LISTEN":           "listen",
	"UIENGINEER_TITLE":            "title",
	"UIENGINEER_CORS_ORIGINS":     "cors_origins",
	"UIENGINEER_LOG_LEVEL":        "log.level",
	"UIENGINEER_LOG_FORMAT":       "log.format",
	"UIENGINEER_STORE":            "store.backend",
	"UIENGINEER_STORE_PATH":       "store.path",
	"UIENGINEER_STORE_DSN":        "store.dsn",
	"UIENGINEER_ENCRYPTION_KEY":   "store.encryption_key",
	"UIENGINEER_REDIS_ADDR":       "store.redis.addr",
	"UIENGINEER_REDIS_PASSWORD":   "store.redis.password",
	"UIENGINEER_REDIS_DB":         "store.redis.db",
	"UIENGINEER_REDIS_TTL":        "store.redis.ttl",
	"UIENGINEER_ORCHESTRATOR":     "orchestrator.provider",
	"UIENGINEER_LLM_BASE_URL":     "orchestrator.base_url",
	"UIENGINEER_LLM_MODEL":        "orchestrator.model",
	"UIENGINEER_LLM_API_KEY":      "orchestrator.api_key",
	"UIENGINEER_LLM_TIMEOUT":      "orchestrator.timeout",
	"UIENGINEER_LLM_TEMPERATURE":  "orchestrator.temperature",
	"UIENGINEER_LOCK_TTL":         "lock.ttl",
	"UIENGINEER_LOCK_DISTRIBUTED": "lock.distributed",
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return Config{}, err
	default:
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := decode(fromEnv(), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	if cfg.Orchestrator.APIKey == "" {
		cfg.Orchestrator.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, cfg.Validate()
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return raw, nil
}

// fromEnv nests the set variables under their dotted paths.
func fromEnv() map[string]any {
	out := map[string]any{}
	for env, key := range envKeys {
		val, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}
	return out
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks enumerations and keys.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendBolt, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Orchestrator.Provider {
	case ProviderLLM, ProviderStatic:
	default:
		return fmt.Errorf("unknown orchestrator provider %q", c.Orchestrator.Provider)
	}
	if c.Lock.Distributed && c.Store.Redis.Addr == "" {
		return errors.New("distributed locking requires store.redis.addr")
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	for i, p := range c.Store.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redact[%d]: %w", i, err)
		}
	}
	return nil
}

// Keys decodes the encryption keys. A nil active key means encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
