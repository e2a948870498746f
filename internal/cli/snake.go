package cli

import (
	"fmt"
	"strings"

	"CatalogAPI/internal/model"

	"github.com/spf13/cobra"
)

// NewSnakeCommand prints the field key a filter label maps to.
func NewSnakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snake <label>",
		Short: "Print the field key derived from a filter label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), model.SnakeCase(strings.Join(args, " ")))
			return err
		},
	}
}
