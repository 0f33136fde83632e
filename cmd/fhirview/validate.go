package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fhirview/pkg/workspace"
)

func newValidateCommand(_ *app) *cobra.Command {
	var (
		path   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report structural problems in a workspace",
		Long: `Validate checks template names and ids, field ids, orders, widget
references and option lists. Findings never stop a preview from rendering;
the command exits non-zero when any are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(path, func() io.Reader { return cmd.InOrStdin() })
			if err != nil {
				return err
			}
			result := workspace.Validate(ws)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				for _, issue := range result.Issues {
					fmt.Fprintf(out, "%s: %s\n", issue.Path, issue.Message)
				}
				if result.Valid {
					fmt.Fprintln(out, "workspace is valid")
				}
			}

			if !result.Valid {
				return fmt.Errorf("%d issue(s) found", len(result.Issues))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "workspace", "w", "-", "workspace file, or - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print findings as JSON")
	return cmd
}
