package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/config"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	generators := map[string]func(root *cobra.Command, w io.Writer) error{
		"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
		"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
		"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nodedocs.

Module names offered for "generate -m" come from the catalog named by
--catalog or the config file.

Bash:
  $ source <(nodedocs completion bash)

Zsh:
  $ nodedocs completion zsh > "${fpath[1]}/_nodedocs"

Fish:
  $ nodedocs completion fish > ~/.config/fish/completions/nodedocs.fish

PowerShell:
  PS> nodedocs completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generators[args[0]](cmd.Root(), c.out)
		},
	}
}

// completePinDisplays offers the pin display modes for --pins.
func completePinDisplays(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	modes := []string{
		string(config.PinDisplayNone) + "\tno images",
		string(config.PinDisplayHidden) + "\tcollapsed pins only",
		string(config.PinDisplayAdvanced) + "\texpanded pins only",
		string(config.PinDisplayBoth) + "\tcollapsed and expanded",
	}
	return modes, cobra.ShellCompDirectiveNoFileComp
}

// completeModules offers the native modules of the catalog that *path names,
// falling back to the config file's catalog.
func (c *CLI) completeModules(path *string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
		manifest := *path
		if manifest == "" {
			cfg, err := c.loadConfig()
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			manifest = cfg.Catalog
		}
		if manifest == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cat, err := catalog.Load(manifest)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, m := range cat.Modules() {
			if strings.HasPrefix(m.ObjectName(), prefix) {
				names = append(names, m.ObjectName())
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
