package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/service"
)

// topCommand opens the interactive leaderboard.
func (c *CLI) topCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Interactive leaderboard of the most voted signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.newClient()
			if err != nil {
				return err
			}
			fetch := func(ctx context.Context) (*service.Stats, error) { return cl.Stats(ctx) }

			p := tea.NewProgram(NewLeaderboardModel(fetch), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(LeaderboardModel); ok && m.Err != nil {
				return m.Err
			}
			return nil
		},
	}
}
