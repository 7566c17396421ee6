package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/signature"
)

// completionCommand prints a shell completion script for the given shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for clawdsign.

Completion covers subcommands (claim, vote, stats, top, generate, models,
serve, migrate) and the --model flag, which offers every model with its own
color scheme.

  bash        source <(clawdsign completion bash)
  zsh         clawdsign completion zsh > "${fpath[1]}/_clawdsign"
  fish        clawdsign completion fish > ~/.config/fish/completions/clawdsign.fish
  powershell  clawdsign completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeModels suggests known models for --model, labelled with their
// primary color.
func completeModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, m := range signature.Models() {
		if strings.HasPrefix(m, toComplete) {
			out = append(out, m+"\t"+signature.SchemeFor(m).Primary)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
