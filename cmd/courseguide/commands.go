package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/config"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

func printCourses(w io.Writer, courses []model.Course, empty string) {
	if len(courses) == 0 {
		printf(w, "%s\n", empty)
		return
	}
	for i, c := range courses {
		printf(w, "%2d. %s (%d credits", i+1, c, c.Credits)
		if c.Level != "" {
			printf(w, ", %s", c.Level)
		}
		if c.Domain != "" {
			printf(w, ", %s", c.Domain)
		}
		printf(w, ")\n")
	}
}

func (a *app) searchCmd() *cobra.Command {
	var q courseguide.Query
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List courses by domain, level or code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				courses, err := comp.Guide.Search(ctx, q)
				if err != nil {
					return err
				}
				return a.emit(courses, func(w io.Writer) { printCourses(w, courses, "No course found.") })
			})
		},
	}
	cmd.Flags().StringVar(&q.Domain, "domain", "", "domain name, IRI fragment or course text")
	cmd.Flags().StringVar(&q.Level, "level", "", "level label (Débutant, Intermédiaire, Avancé)")
	cmd.Flags().StringVar(&q.CourseCode, "code", "", "exact course code")
	return cmd
}

func (a *app) prereqsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prereqs COURSE",
		Short: "Show the direct and transitive prerequisites of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				p, err := comp.Guide.Prerequisites(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(p, func(w io.Writer) {
					printf(w, "%s\n", p.Course)
					if len(p.All) == 0 {
						printf(w, "  no prerequisites\n")
						return
					}
					for _, d := range p.Direct {
						printf(w, "  requires %s: %s\n", d.Code, d.Name)
					}
					printf(w, "  all: %s\n", strings.Join(p.All, ", "))
				})
			})
		},
	}
}

func (a *app) pathCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "path [COURSE]",
		Short: "Order a course, or every course of --domain, after its prerequisites",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				var (
					path []model.Course
					err  error
				)
				if len(args) == 1 {
					path, err = comp.Guide.CoursePath(ctx, args[0])
				} else {
					path, err = comp.Guide.LearningPath(ctx, domain)
				}
				if err != nil {
					return err
				}
				return a.emit(path, func(w io.Writer) { printCourses(w, path, "No learning path.") })
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "plan every course of this domain")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info COURSE",
		Short: "Describe a course and the skills it teaches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				c, err := comp.Guide.CourseInfo(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(c, func(w io.Writer) {
					printf(w, "%s\n", c)
					printf(w, "  domain: %s\n  level: %s\n  credits: %d\n", c.Domain, c.Level, c.Credits)
					if c.Description != "" {
						printf(w, "  %s\n", c.Description)
					}
					if len(c.Skills) > 0 {
						printf(w, "  skills: %s\n", strings.Join(c.Skills, ", "))
					}
				})
			})
		},
	}
}

func (a *app) eligibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eligibility STUDENT COURSE",
		Short: "Check whether a student has every prerequisite of a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				el, err := comp.Guide.Eligibility(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return a.emit(el, func(w io.Writer) {
					verdict := "not eligible"
					if el.Eligible {
						verdict = "eligible"
					}
					printf(w, "%s for %s: %s (%s)\n", args[0], args[1], verdict, el.Message)
				})
			})
		},
	}
}

func (a *app) recommendCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "recommend STUDENT",
		Short: "Rank courses for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				recs, err := comp.Guide.Recommend(ctx, args[0], n)
				if err != nil {
					return err
				}
				return a.emit(recs, func(w io.Writer) {
					if len(recs) == 0 {
						printf(w, "No recommendation.\n")
					}
					for i, r := range recs {
						printf(w, "%2d. %s  score=%.2f  %s\n", i+1, r.Course, r.Score, r.Reason)
					}
				})
			})
		},
	}
	cmd.Flags().IntVarP(&n, "max", "n", 0, "maximum number of recommendations (0 uses the configured default)")
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan STUDENT GOAL",
		Short: "Plan the courses left before a goal course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				plan, err := comp.Guide.PlanToGoal(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return a.emit(plan, func(w io.Writer) {
					printf(w, "Plan %s: %s -> %s\n", plan.ID, plan.StudentID, plan.Goal)
					printf(w, "Completed %d, remaining %d course(s), %d credits, about %d semester(s)\n",
						plan.CompletedCount, len(plan.RemainingPath), plan.TotalCredits, plan.EstimatedSemesters)
					printCourses(w, plan.RemainingPath, "Goal already reached.")
					if len(plan.NextCourses) > 0 {
						printf(w, "Next: %s\n", strings.Join(model.Codes(plan.NextCourses), ", "))
					}
				})
			})
		},
	}
}

func (a *app) similarCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar COURSE",
		Short: "List courses sharing a course's domain or level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				courses, err := comp.Guide.Similar(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return a.emit(courses, func(w io.Writer) { printCourses(w, courses, "No similar course.") })
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of courses (0 uses the configured default)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats COURSE",
		Short: "Count a course's prerequisites and similar courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				s, err := comp.Guide.Stats(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(s, func(w io.Writer) {
					printf(w, "%s\n  prerequisites: %d\n  similar: %d\n", s.Course, s.TotalPrerequisites, s.SimilarCount)
					for _, c := range s.SimilarCourses {
						printf(w, "    %s\n", c)
					}
				})
			})
		},
	}
}

func (a *app) skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills SKILL...",
		Short: "Find courses teaching any of the given skills",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				courses, err := comp.Guide.Skills(ctx, args)
				if err != nil {
					return err
				}
				return a.emit(courses, func(w io.Writer) { printCourses(w, courses, "No course teaches these skills.") })
			})
		},
	}
}

func (a *app) levelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "level STUDENT",
		Short: "Suggest the level a student should take next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				level, err := comp.Guide.Level(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(map[string]string{"student_id": args[0], "level": string(level)}, func(w io.Writer) {
					printf(w, "%s: %s\n", args[0], level)
				})
			})
		},
	}
}

func (a *app) competenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "competencies STUDENT",
		Short: "List the skills a student holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, comp *config.Components) error {
				comps, err := comp.Guide.Competencies(ctx, args[0])
				if err != nil {
					return err
				}
				return a.emit(comps, func(w io.Writer) {
					if len(comps) == 0 {
						printf(w, "No competency recorded.\n")
					}
					for _, c := range comps {
						printf(w, "  %-30s %s\n", c.Label, c.Source)
					}
				})
			})
		},
	}
}
