package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type validateResult struct {
	Valid    bool     `json:"valid"`
	Models   int      `json:"models"`
	Catalogs []string `json:"catalogs,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewValidateCommand loads every model and catalog and reports the first
// definition error.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate",
		Short:         "Load models and catalogs and check every binding",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, catalogs, err := rootOpts.load()
			res := validateResult{Valid: err == nil}
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Models = len(schema)
				res.Catalogs = catalogs.Names()
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
			} else if err == nil {
				fmt.Fprintf(out, "ok: %d models, %d catalogs\n", res.Models, len(res.Catalogs))
				for _, name := range res.Catalogs {
					fmt.Fprintf(out, "  %s\n", name)
				}
			} else {
				fmt.Fprintf(out, "invalid: %s\n", res.Error)
			}

			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			return nil
		},
	}
}
