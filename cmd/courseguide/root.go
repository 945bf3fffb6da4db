package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/safaabouhnine/CourseGuideAI/internal/logging"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/config"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	out         io.Writer
	configPath  string
	catalogPath string
	jsonOut     bool
	logger      *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "courseguide",
		Short:         "Course guidance over an ontology of courses, skills and students",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file (defaults to the in-memory sample)")
	flags.StringVar(&a.catalogPath, "catalog", "", "catalogue file seeded into memory or an empty sqlite store")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		a.searchCmd(),
		a.prereqsCmd(),
		a.pathCmd(),
		a.infoCmd(),
		a.eligibilityCmd(),
		a.recommendCmd(),
		a.planCmd(),
		a.similarCmd(),
		a.statsCmd(),
		a.skillsCmd(),
		a.levelCmd(),
		a.competenciesCmd(),
		a.serveCmd(),
		a.seedCmd(),
	)
	return root
}

// components loads the configuration, builds the logger it describes and
// wires the store and guide.
func (a *app) components(ctx context.Context) (*config.Components, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return nil, err
		}
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	loader := config.Loader{ConfigPath: a.configPath, CatalogPath: a.catalogPath, Logger: logger}
	return loader.Load(ctx)
}

// run opens the components, calls fn and releases them.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, comp *config.Components) error) error {
	comp, err := a.components(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()
	return fn(cmd.Context(), comp)
}

// emit prints v as indented JSON with --json, otherwise calls text.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
