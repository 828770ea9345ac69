package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moviegraph/pkg/config"
	"github.com/matzehuels/moviegraph/pkg/pipeline"
)

// completionCommand prints a shell completion script. Besides command and
// flag names, the scripts complete render formats and serve cache backends.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for moviegraph.

Completions cover the subcommands and their flags, including the values of
"render --format" (svg,png,pdf,dot,graphviz,json, comma-separated) and
"serve --cache" (none, file, redis). For example, after loading them:

  $ moviegraph render ratings.json -f svg,<TAB>
  $ moviegraph serve --cache <TAB>

Bash:
  $ source <(moviegraph completion bash)

Zsh:
  $ moviegraph completion zsh > "${fpath[1]}/_moviegraph"

Fish:
  $ moviegraph completion fish > ~/.config/fish/completions/moviegraph.fish

PowerShell:
  PS> moviegraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// completion scripts must not depend on a readable config file
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}

// completeFormats completes the last element of a comma-separated format list.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, partial = toComplete[:i+1], toComplete[i+1:]
	}
	chosen := strings.Split(done, ",")

	var out []string
	for _, f := range sortedFormats() {
		if strings.HasPrefix(f, partial) && !slices.Contains(chosen, f) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func sortedFormats() []string {
	formats := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// cacheBackends completes serve --cache.
var cacheBackends = cobra.FixedCompletions(
	[]string{config.CacheNone, config.CacheFile, config.CacheRedis},
	cobra.ShellCompDirectiveNoFileComp,
)
