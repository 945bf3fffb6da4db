// Package config loads the YAML configuration and builds the components it
// describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/reasoner"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/recommend"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFuseki = "fuseki"
)

// Config is the top-level configuration file.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Recommend RecommendConfig `yaml:"recommend"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	// Catalog is a seed file loaded into memory and empty sqlite stores.
	Catalog string `yaml:"catalog"`
}

type StoreConfig struct {
	Backend    string       `yaml:"backend" validate:"required,oneof=memory sqlite fuseki"`
	SQLitePath string       `yaml:"sqlite_path"`
	Fuseki     FusekiConfig `yaml:"fuseki"`
}

type FusekiConfig struct {
	URL       string        `yaml:"url" validate:"omitempty,url"`
	Dataset   string        `yaml:"dataset"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
}

type CacheConfig struct {
	Size int `yaml:"size" validate:"gte=0"`
}

type RecommendConfig struct {
	MaxResults   int `yaml:"max_results" validate:"gte=0,ltefield=MaxLimit"`
	SimilarLimit int `yaml:"similar_limit" validate:"gte=0,ltefield=MaxLimit"`
	// MaxLimit bounds the result counts a caller may request.
	MaxLimit int               `yaml:"max_limit" validate:"gte=1,lte=10000"`
	Weights  recommend.Weights `yaml:"weights"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type APIConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Default returns a configuration serving the built-in sample catalogue
// from memory.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    BackendMemory,
			SQLitePath: "courseguide.db",
			Fuseki: FusekiConfig{
				Dataset: "courses",
				Timeout: 10 * time.Second,
			},
		},
		Cache: CacheConfig{Size: reasoner.DefaultCacheSize},
		Recommend: RecommendConfig{
			MaxResults:   recommend.DefaultMaxResults,
			SimilarLimit: recommend.DefaultSimilarLimit,
			MaxLimit:     recommend.DefaultMaxLimit,
			Weights:      recommend.DefaultWeights(),
		},
		Log: LogConfig{Level: "info", Format: "text"},
		API: APIConfig{Addr: ":8080"},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateStore, StoreConfig{})
	return v
}

func validateStore(sl validator.StructLevel) {
	s := sl.Current().Interface().(StoreConfig)
	switch s.Backend {
	case BackendSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			sl.ReportError(s.SQLitePath, "SQLitePath", "sqlite_path", "required_for_backend", s.Backend)
		}
	case BackendFuseki:
		if s.Fuseki.URL == "" {
			sl.ReportError(s.Fuseki.URL, "Fuseki.URL", "url", "required_for_backend", s.Backend)
		}
		if s.Fuseki.Dataset == "" {
			sl.ReportError(s.Fuseki.Dataset, "Fuseki.Dataset", "dataset", "required_for_backend", s.Backend)
		}
	}
}

// Validate checks field ranges and backend requirements. Failures wrap
// internalerr.ErrInvalidConfig.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(msgs, "; "))
}
