// Package config loads and validates the engine connection settings from
// the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file. Variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables read by Load.
const (
	EnvEngineURL   = "ENGINE_URL"
	EnvEngineToken = "ENGINE_TOKEN"

	// EnvFile overrides the path of the .env file.
	EnvFile = "ENV_FILE"
)

// DefaultEnvFile is the .env file read when ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Config holds the engine connection settings.
type Config struct {
	// EngineURL is the base URL of the wallet engine.
	EngineURL string `env:"ENGINE_URL" validate:"required,url"`

	// EngineToken is the engine access token.
	EngineToken string `env:"ENGINE_TOKEN" validate:"required"`
}

// ValidationError lists every invalid variable.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// loadOptions holds the Load configuration.
type loadOptions struct {
	envFile     string
	envFileSet  bool
	skipEnvFile bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithEnvFile reads path instead of ENV_FILE or .env. A missing explicit
// file is an error.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
		o.envFileSet = true
	}
}

// WithoutEnvFile reads the process environment only.
func WithoutEnvFile() LoadOption {
	return func(o *loadOptions) {
		o.skipEnvFile = true
	}
}

// Load reads the configuration and validates it.
//
// The .env file is chosen in this order: WithEnvFile, the ENV_FILE variable,
// then ./.env. Only the implicit ./.env may be missing.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if !o.skipEnvFile {
		if err := loadEnvFile(o); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	cfg := &Config{
		EngineURL:   strings.TrimSpace(v.GetString(EnvEngineURL)),
		EngineToken: strings.TrimSpace(v.GetString(EnvEngineToken)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads the selected .env file into the process environment.
func loadEnvFile(o *loadOptions) error {
	path, explicit := o.envFile, o.envFileSet
	if !explicit {
		if p := os.Getenv(EnvFile); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultEnvFile
		}
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
