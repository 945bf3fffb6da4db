package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/catalog"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/fuseki"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/memstore"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/observed"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/sqlite"
)

// Loader reads the configuration and constructs the components.
type Loader struct {
	// ConfigPath is optional; Default is used when empty.
	ConfigPath string
	// CatalogPath overrides Config.Catalog.
	CatalogPath string
	Logger      *slog.Logger
	// Registry receives the collectors; a fresh one is created when nil.
	Registry *prometheus.Registry
}

// Components holds everything a command or server needs.
type Components struct {
	Config   *Config
	Store    store.Store
	Guide    *courseguide.Guide
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	logger *slog.Logger
	seeded *catalog.Catalog
}

// Load reads the configuration, opens the configured store, seeds it when
// the backend calls for it and wires the guide on top.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		var err error
		if cfg, err = Load(l.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if l.CatalogPath != "" {
		cfg.Catalog = l.CatalogPath
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := l.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	comp := &Components{
		Config:   cfg,
		Metrics:  metrics.New(reg),
		Registry: reg,
		logger:   logger,
	}

	raw, err := comp.openStore(ctx)
	if err != nil {
		return nil, err
	}
	comp.Store = observed.Wrap(raw, comp.Metrics)

	weights := cfg.Recommend.Weights
	comp.Guide = courseguide.New(courseguide.Options{
		Store:        comp.Store,
		Logger:       logger,
		Metrics:      comp.Metrics,
		CacheSize:    cfg.Cache.Size,
		Weights:      &weights,
		MaxResults:   cfg.Recommend.MaxResults,
		SimilarLimit: cfg.Recommend.SimilarLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
	})
	return comp, nil
}

func (c *Components) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config
	switch cfg.Store.Backend {
	case BackendMemory:
		st := memstore.New()
		cat, err := c.catalog(true)
		if err != nil {
			return nil, err
		}
		if err := c.seed(ctx, st, cat); err != nil {
			return nil, err
		}
		return st, nil

	case BackendSQLite:
		st, err := sqlite.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		n, err := st.Len(ctx)
		if err != nil {
			st.Close()
			return nil, err
		}
		if n == 0 && cfg.Catalog != "" {
			cat, err := c.catalog(false)
			if err == nil {
				err = c.seed(ctx, st, cat)
			}
			if err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil

	case BackendFuseki:
		f := cfg.Store.Fuseki
		return fuseki.New(fuseki.Config{
			URL:       f.URL,
			Dataset:   f.Dataset,
			Username:  f.Username,
			Password:  f.Password,
			Timeout:   f.Timeout,
			RateLimit: f.RateLimit,
		})
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// catalog loads the configured seed file, or the sample when none is set
// and fallback is true.
func (c *Components) catalog(fallback bool) (*catalog.Catalog, error) {
	if c.Config.Catalog == "" {
		if fallback {
			return catalog.Sample(), nil
		}
		return nil, nil
	}
	cat, err := catalog.Load(c.Config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (c *Components) seed(ctx context.Context, st store.Store, cat *catalog.Catalog) error {
	if cat == nil {
		return nil
	}
	if err := catalog.Seed(ctx, st, cat); err != nil {
		return err
	}
	c.seeded = cat
	c.logger.Info("config: catalog seeded", "backend", c.Config.Store.Backend,
		"courses", len(cat.Courses), "students", len(cat.Students))
	return nil
}

// ReloadCatalog replaces the statements of the previously seeded catalogue
// with those of the file at path in one batch update, then clears the
// reasoner cache. The cache is cleared even when the update fails, since a
// backend may have applied part of it.
func (c *Components) ReloadCatalog(ctx context.Context, path string) error {
	next, err := catalog.Load(path)
	if err != nil {
		return err
	}
	var batch sparql.Batch
	if c.seeded != nil {
		batch = append(batch, sparql.DeleteData{Triples: c.seeded.Triples()})
	}
	batch = append(batch, sparql.InsertData{Triples: next.Triples()})

	err = c.Store.Update(ctx, batch)
	c.Guide.Reasoner().Invalidate("")
	if err != nil {
		return fmt.Errorf("catalog: reload %s: %w", path, err)
	}
	c.seeded = next
	c.logger.Info("config: catalog reloaded", "path", path, "courses", len(next.Courses))
	return nil
}

// Close releases the store.
func (c *Components) Close() error {
	return c.Guide.Close()
}
