package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fhirview/pkg/workspace"
)

func newEncodeCommand(a *app) *cobra.Command {
	var (
		path      string
		output    string
		assignIDs bool
		asYAML    bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON or YAML workspace document as a base64 payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readInput(path, func() io.Reader { return cmd.InOrStdin() })
			if err != nil {
				return fmt.Errorf("read workspace: %w", err)
			}
			ws, err := workspace.Parse(raw)
			if err != nil {
				return err
			}
			if assignIDs {
				n := workspace.AssignIDs(&ws, uuid.NewString)
				a.logger.Info().Int("assigned", n).Msg("filled missing ids")
			}

			if asYAML {
				doc, err := yaml.Marshal(ws)
				if err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), output, doc)
			}

			payload, err := workspace.Encode(ws)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, []byte(payload+"\n"))
		},
	}
	cmd.Flags().StringVarP(&path, "workspace", "w", "-", "workspace document, or - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&assignIDs, "assign-ids", false, "fill missing template and field ids with UUIDs")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "write the normalised document as YAML instead of a payload")
	return cmd
}
