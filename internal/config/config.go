package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/dgallion1/markscan/internal/scheme"
	"github.com/dgallion1/markscan/internal/source"
)

// Name filter settings accepted in NAME_FILTER.
const (
	FilterPaired   = "paired"
	FilterRepeated = "repeated"
	FilterAll      = "all"
)

// Config fields carry the environment variable they are read from, so
// validation errors name the variable to fix.
type Config struct {
	Port string `env:"PORT" validate:"required,numeric"`

	// Auth
	APIKey string `env:"MARKSCAN_API_KEY" validate:"required"`

	// Worker pool
	WorkerCount  int `env:"WORKER_COUNT" validate:"min=1"`
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" validate:"min=1"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" validate:"min=1"`

	// Job and document state
	JobTTL      time.Duration `env:"JOB_TTL"`
	DocumentTTL time.Duration `env:"DOCUMENT_TTL"`

	// Scanner
	NameFilter  string `env:"NAME_FILTER" validate:"oneof=paired repeated all"`
	LegacyDepth bool   `env:"LEGACY_DEPTH"`

	// Loaders
	NormalizeHTML        bool `env:"NORMALIZE_HTML"`
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT"`
}

// Load reads configuration from the environment. Variables from ENV_FILE
// (default .env) are loaded first without overriding ones already set.
func Load() Config {
	_ = godotenv.Load(envOr("ENV_FILE", ".env"))

	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("MARKSCAN_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		DocumentTTL: envDuration("DOCUMENT_TTL", 24*time.Hour),

		NameFilter:  strings.ToLower(envOr("NAME_FILTER", FilterPaired)),
		LegacyDepth: envBool("LEGACY_DEPTH", false),

		NormalizeHTML:        envBool("NORMALIZE_HTML", true),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 24 * time.Hour
	}

	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})
	return v
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s; got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// SchemeOptions translates scanner settings into scheme options.
func (c Config) SchemeOptions() []scheme.Option {
	var opts []scheme.Option
	switch c.NameFilter {
	case FilterRepeated:
		opts = append(opts, scheme.WithNameFilter(scheme.RepeatedNames))
	case FilterAll:
		opts = append(opts, scheme.WithNameFilter(scheme.AllNames))
	}
	if c.LegacyDepth {
		opts = append(opts, scheme.WithLegacyDepth())
	}
	return opts
}

// SourceOptions translates loader settings into source options.
func (c Config) SourceOptions() source.Options {
	return source.Options{
		NormalizeHTML:        c.NormalizeHTML,
		PDFFallbackPdftotext: c.PDFFallbackPdftotext,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
