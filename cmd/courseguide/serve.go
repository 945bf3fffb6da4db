package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/safaabouhnine/CourseGuideAI/internal/api"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/config"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				if addr == "" {
					addr = comp.Config.API.Addr
				}
				if watch {
					if comp.Config.Catalog == "" {
						return errors.New("--watch needs a catalogue file (--catalog or catalog: in the config)")
					}
					stop, err := watchCatalog(ctx, comp, a.logger)
					if err != nil {
						return err
					}
					defer stop()
				}
				gin.SetMode(gin.ReleaseMode)
				return serve(ctx, addr, api.NewRouter(comp.Guide, comp.Registry, a.logger), a.logger)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to api.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the catalogue file when it changes")
	return cmd
}

// serve runs the server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		logger.Info("serve: listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("serve: stopped")
	return nil
}

// watchCatalog reloads the catalogue whenever its file is written or
// replaced. The directory is watched so editors that rename over the file
// are seen too.
func watchCatalog(ctx context.Context, comp *config.Components, logger *slog.Logger) (func(), error) {
	path, err := filepath.Abs(comp.Config.Catalog)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch catalog: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
					continue
				}
				if err := comp.ReloadCatalog(ctx, path); err != nil {
					logger.Warn("serve: catalog reload failed", "path", path, "err", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("serve: watcher error", "err", err)
			}
		}
	}()
	logger.Info("serve: watching catalog", "path", path)

	return func() {
		w.Close()
		<-done
	}, nil
}
