package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/coursepanel/core/llm"
)

func newModelsCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the selectable LLM models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, defaultID := llm.Default.List(), llm.Default.DefaultID()
			if remote {
				resp, err := a.client.Models(commandContext(cmd))
				if err != nil {
					return err
				}
				models, defaultID = resp.Models, resp.DefaultID
			}

			out := cmd.OutOrStdout()
			for _, m := range models {
				marker := " "
				if m.ID == defaultID {
					marker = "*"
				}
				_, _ = fmt.Fprintf(out, "%s %-40s %s - %s\n", marker, m.ID, m.Name, m.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "list the models served by the remote API")
	return cmd
}
