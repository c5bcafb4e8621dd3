package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults are applied before any other source
func Defaults() map[string]any {
	return map[string]any{
		"port":           "3000",
		"jwt_secret":     "",
		"signing_method": "HS256",
		"token_ttl":      "1h",
		"token_issuer":   "",
		"context_key":    "user",
		"token_lookup":   "header:Authorization",
		"auth_scheme":    "Bearer",
		"store_backend":  "file",
		"store_path":     "data/db.json",
		"s3_bucket":      "",
		"s3_key":         "users/db.json",
		"s3_region":      "us-east-1",
		"s3_endpoint":    "",
		"s3_access_key":  "",
		"s3_secret_key":  "",
		"log_level":      "info",
		"debug":          false,
	}
}

// LoadOptions controls where Load reads from
type LoadOptions struct {
	// EnvFile is loaded with godotenv when present. Defaults to ".env".
	EnvFile string
	// ConfigFile is an optional JSON file. Falls back to CONFIG_FILE.
	ConfigFile string
	// Flags, when set, override every other source for flags the user passed.
	Flags *pflag.FlagSet
	// AllowMissingSecret lets offline tools that never sign tokens load
	// the storage settings without JWT_SECRET.
	AllowMissingSecret bool
}

// Load merges defaults, the JSON file, environment variables and flags,
// in that order, then validates the result.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	known := Defaults()
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		key = strings.ToLower(key)
		if _, ok := known[key]; !ok || value == "" {
			return "", nil
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithValue(opts.Flags, ".", k, func(key, value string) (string, any) {
			key = strings.ReplaceAll(key, "-", "_")
			if _, ok := known[key]; !ok {
				return "", nil
			}
			return key, value
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(!opts.AllowMissingSecret); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RegisterFlags adds the flags Load understands to fs
func RegisterFlags(fs *pflag.FlagSet) *string {
	fs.String("port", "", "HTTP listen port")
	fs.String("store-backend", "", "collection backend: file or s3")
	fs.String("store-path", "", "path of the JSON collection for the file backend")
	fs.String("log-level", "", "trace, debug, info, warn or error")
	return fs.String("config", "", "optional JSON config file")
}
