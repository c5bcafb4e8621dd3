package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-user-auth"
	"github.com/goliatone/go-user-auth/repository"
)

// ErrMissingSigningKey is returned when JWT_SECRET is not configured
var ErrMissingSigningKey = errors.New("JWT_SECRET is required", errors.CategoryValidation).
	WithTextCode("MISSING_SIGNING_KEY")

// Config is the service configuration
type Config struct {
	Port          string        `koanf:"port" json:"port"`
	JWTSecret     string        `koanf:"jwt_secret" json:"jwt_secret"`
	SigningMethod string        `koanf:"signing_method" json:"signing_method"`
	TokenTTL      time.Duration `koanf:"token_ttl" json:"token_ttl"`
	TokenIssuer   string        `koanf:"token_issuer" json:"token_issuer"`
	ContextKey    string        `koanf:"context_key" json:"context_key"`
	TokenLookup   string        `koanf:"token_lookup" json:"token_lookup"`
	AuthScheme    string        `koanf:"auth_scheme" json:"auth_scheme"`

	StoreBackend string `koanf:"store_backend" json:"store_backend"`
	StorePath    string `koanf:"store_path" json:"store_path"`
	S3Bucket     string `koanf:"s3_bucket" json:"s3_bucket"`
	S3Key        string `koanf:"s3_key" json:"s3_key"`
	S3Region     string `koanf:"s3_region" json:"s3_region"`
	S3Endpoint   string `koanf:"s3_endpoint" json:"s3_endpoint"`
	S3AccessKey  string `koanf:"s3_access_key" json:"s3_access_key"`
	S3SecretKey  string `koanf:"s3_secret_key" json:"s3_secret_key"`

	LogLevel string `koanf:"log_level" json:"log_level"`
	Debug    bool   `koanf:"debug" json:"debug"`
}

var _ auth.Config = (*Config)(nil)

// Validate fails when the service cannot start safely
func (c Config) Validate() error {
	return c.validate(true)
}

func (c Config) validate(requireSecret bool) error {
	if requireSecret && strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingSigningKey
	}

	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.Port, validation.Required, is.Port),
			validation.Field(&c.SigningMethod, validation.In("HS256", "HS384", "HS512")),
			validation.Field(&c.TokenTTL, validation.By(positiveDuration)),
			validation.Field(&c.StoreBackend, validation.Required, validation.In(repository.BackendFile, repository.BackendS3)),
			validation.Field(&c.StorePath, validation.By(requiredFor(c.StoreBackend, repository.BackendFile))),
			validation.Field(&c.S3Bucket, validation.By(requiredFor(c.StoreBackend, repository.BackendS3))),
			validation.Field(&c.S3Key, validation.By(requiredFor(c.StoreBackend, repository.BackendS3))),
			validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error")),
		)
	}, "invalid configuration"); err != nil {
		return err
	}

	return nil
}

func positiveDuration(value any) error {
	d, _ := value.(time.Duration)
	if d <= 0 {
		return errors.New("must be a positive duration", errors.CategoryValidation)
	}
	return nil
}

func requiredFor(backend, want string) validation.RuleFunc {
	return func(value any) error {
		if backend != want {
			return nil
		}
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New("is required for the "+want+" backend", errors.CategoryValidation)
		}
		return nil
	}
}

func (c Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c Config) GetContextKey() string {
	return c.ContextKey
}

func (c Config) GetTokenTTL() time.Duration {
	return c.TokenTTL
}

func (c Config) GetTokenLookup() string {
	return c.TokenLookup
}

func (c Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c Config) GetIssuer() string {
	return c.TokenIssuer
}

// Address is the listen address for the HTTP server
func (c Config) Address() string {
	return ":" + c.Port
}

// StoreOptions maps the storage settings to repository options
func (c Config) StoreOptions() repository.Options {
	return repository.Options{
		Backend: c.StoreBackend,
		Path:    c.StorePath,
		S3: repository.S3Config{
			Bucket:    c.S3Bucket,
			Key:       c.S3Key,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		},
	}
}

// Masked returns a copy safe to print
func (c Config) Masked() Config {
	c.JWTSecret = mask(c.JWTSecret)
	c.S3SecretKey = mask(c.S3SecretKey)
	c.S3AccessKey = mask(c.S3AccessKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
