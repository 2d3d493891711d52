package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/errors"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Summarise a catalog manifest",
		Long: `Catalog loads a manifest and lists its native modules with the number of
classes and spawn actions each contributes, followed by the blueprints.`,
		Example: `  nodedocs catalog --catalog catalog.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Catalog
			}
			if path == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no catalog manifest: pass --catalog")
			}

			prog := newProgress(c.Logger)
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}
			prog.done("Loaded catalog")
			c.printCatalog(path, cat)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "catalog manifest (YAML)")
	return cmd
}

func (c *CLI) printCatalog(path string, cat *catalog.Catalog) {
	classes := 0
	for _, m := range cat.Modules() {
		classes += len(m.Classes)
	}

	c.println(StyleTitle.Render(path))
	c.printKeyValue("Modules", StyleNumber.Render(fmt.Sprint(len(cat.Modules()))))
	c.printKeyValue("Classes", StyleNumber.Render(fmt.Sprint(classes)))
	c.printKeyValue("Blueprints", StyleNumber.Render(fmt.Sprint(len(cat.Blueprints()))))
	c.printKeyValue("Actions", StyleNumber.Render(fmt.Sprint(cat.ActionCount())))

	for _, m := range cat.Modules() {
		actions := 0
		for _, cls := range m.Classes {
			actions += len(cat.Actions(cls))
		}
		c.printDetail("%-20s %3d classes %4d actions", m.ObjectName(), len(m.Classes), actions)
	}
	for _, bp := range cat.Blueprints() {
		c.printDetail("%-20s %s", bp.ObjectName(), bp.Path)
	}
}
