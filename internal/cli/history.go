package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished documentation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.History.Backend == config.BackendNone {
				c.printInfo("Run history is disabled")
				return nil
			}
			store, err := c.openHistory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				c.printInfo("No runs recorded")
				return nil
			}
			for _, r := range runs {
				c.printRun(r)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "maximum number of runs to list")
	return cmd
}

func (c *CLI) printRun(r history.Record) {
	when := r.Finished.Local().Format("2006-01-02 15:04")
	line := fmt.Sprintf("%s  %s  %s", StyleDim.Render(when), r.Title,
		StyleDim.Render(fmt.Sprintf("%d nodes, %s", r.Nodes, r.Duration.Round(time.Millisecond))))
	if r.Succeeded() {
		c.printSuccess("%s", line)
	} else {
		c.printError("%s", line)
	}
	if r.Error != "" {
		c.printDetail("%s", r.Error)
	}
	for _, m := range r.Missing {
		c.printDetail("missing module %s", m)
	}
}
