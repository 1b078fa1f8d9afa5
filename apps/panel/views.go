package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/coursepanel/core/panel"
)

func defaultView(a *app) panel.View {
	v, err := panel.ParseView(a.conf.Panel.DefaultView)
	if err != nil {
		a.logger.Warn("invalid default view, using analytics", map[string]interface{}{"view": a.conf.Panel.DefaultView})
		return panel.DefaultView
	}
	return v
}

func newViewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the course administration views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def := defaultView(a)
			out := cmd.OutOrStdout()
			for _, v := range panel.Views() {
				marker := " "
				if v == def {
					marker = "*"
				}
				_, _ = fmt.Fprintf(out, "%s %s\n", marker, v)
			}
			return nil
		},
	}
}

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view <name>",
		Short: "Switch to a course administration view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := panel.ParseView(args[0])
			if err != nil {
				return err
			}
			sel, err := panel.NewViewSelector(defaultView(a))
			if err != nil {
				return err
			}
			prev := sel.Active()
			sel.Mount(func() { a.logger.Debug("unmounted view", map[string]interface{}{"view": prev.String()}) })
			if err = sel.Select(v); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "active view: %s\n", sel.Active())
			return nil
		},
	}
}
