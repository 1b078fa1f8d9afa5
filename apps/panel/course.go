package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/coursepanel/core/course"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/panel"
)

func (a *app) newModelController(cmd *cobra.Command, courseID string) (*panel.ModelController, error) {
	creds, err := a.credentials(cmd)
	if err != nil {
		return nil, err
	}
	return panel.NewModelController(courseID, panel.ModelControllerDeps{
		Store:       a.client,
		Credentials: creds,
		Catalog:     llm.Default,
		Notifier:    newConsoleNotifier(cmd.ErrOrStderr()),
		Logger:      a.logger,
	})
}

func newCourseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "course <course-id>",
		Short: "Show a course and its LLM model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.newModelController(cmd, args[0])
			if err != nil {
				return err
			}
			defer ctrl.Close()
			resolver := course.NewResolver(a.client, a.creds, a.logger)

			var ident course.Identity
			g, ctx := errgroup.WithContext(commandContext(cmd))
			g.Go(func() error {
				var err error
				ident, err = resolver.Resolve(ctx, ctrl.CourseID())
				return err
			})
			g.Go(func() error { return ctrl.Load(ctx) })
			if err = g.Wait(); err != nil {
				return err
			}

			snap := ctrl.Snapshot()
			model, _ := llm.Default.Get(snap.Confirmed.LLMModelID)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "course:    %s\n", ident.DisplayName())
			if !ident.Confirmed {
				_, _ = fmt.Fprintln(out, "           (not found among your courses)")
			}
			_, _ = fmt.Fprintf(out, "LLM model: %s (%s)\n", model.Name, model.ID)
			return nil
		},
	}
}

func newSetModelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-model <course-id> <model-id>",
		Short: "Change the LLM model of a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// reject unknown models before any remote call
			if err := llm.Default.Check(args[1]); err != nil {
				return err
			}

			ctrl, err := a.newModelController(cmd, args[0])
			if err != nil {
				return err
			}
			defer ctrl.Close()

			ctx := commandContext(cmd)
			if err = ctrl.Load(ctx); err != nil {
				return err
			}
			if err = ctrl.SetPending(args[1]); err != nil {
				return err
			}
			return ctrl.Save(ctx)
		},
	}
}
