package cli

import (
	"fmt"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/model"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ModelsDir   string
	CatalogsDir string
	Format      string // "text" | "json"
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the catalogctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect catalog definitions offline",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ModelsDir, "models", "./db", "directory with model YAML files")
	cmd.PersistentFlags().StringVar(&opts.CatalogsDir, "catalogs", "./catalogs", "directory with catalog YAML files")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewSnakeCommand())

	return cmd
}

func (o *RootOptions) load() (model.Schema, *catalog.Registry, error) {
	schema, err := model.LoadSchema(o.ModelsDir)
	if err != nil {
		return nil, nil, err
	}
	catalogs, err := catalog.LoadCatalogsFromDir(o.CatalogsDir, schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, catalogs, nil
}
