package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newTemplatesCommand(_ *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates in a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(path, func() io.Reader { return cmd.InOrStdin() })
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tpl := range ws.Templates {
				line := tpl.Name
				if tpl.ResourceType != "" {
					line += "\t" + tpl.ResourceType
				}
				if tpl.ID != "" {
					line += "\t" + tpl.ID
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "workspace", "w", "-", "workspace file, or - for stdin")
	return cmd
}
