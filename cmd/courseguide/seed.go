package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/catalog"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/config"
)

func (a *app) seedCmd() *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the --catalog file (or the built-in sample) into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				var cat *catalog.Catalog
				switch {
				case comp.Config.Catalog != "":
					var err error
					if cat, err = catalog.Load(comp.Config.Catalog); err != nil {
						return err
					}
				case sample:
					cat = catalog.Sample()
				default:
					return errors.New("nothing to seed: pass --catalog or --sample")
				}
				if err := catalog.Seed(ctx, comp.Store, cat); err != nil {
					return err
				}
				comp.Guide.Reasoner().Invalidate("")
				summary := map[string]int{
					"domains": len(cat.Domains), "skills": len(cat.Skills),
					"courses": len(cat.Courses), "students": len(cat.Students),
				}
				return a.emit(summary, func(w io.Writer) {
					printf(w, "Seeded %d course(s), %d student(s) into %s store\n",
						len(cat.Courses), len(cat.Students), comp.Config.Store.Backend)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "seed the built-in sample catalogue")
	return cmd
}
