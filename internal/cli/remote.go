package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/signature"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// claimCommand creates the claim command that claims a signature on the server.
func (c *CLI) claimCommand() *cobra.Command {
	req := service.ClaimRequest{Model: signature.DefaultModel, SkillsCount: 5}
	var output string

	cmd := &cobra.Command{
		Use:     "claim",
		Short:   "Claim a signature on the server",
		Example: `  clawdsign claim --name Atlas --model gpt-4 --theme explorer --skills 6 --by atlas@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			spinner := newSpinnerWithContext(ctx, "Claiming signature...")
			spinner.Start()
			data, err := cl.Claim(ctx, req)
			if err != nil {
				spinner.Stop()
				return claimFailure(err)
			}
			spinner.StopWithSuccess(fmt.Sprintf("Claimed %s for %s", StyleHighlight.Render("#"+data.SignatureID), data.Name))

			printKeyValue("Agent ID", data.ID)
			if data.ClaimedAt != nil {
				printKeyValue("Claimed at", data.ClaimedAt.Local().Format(time.DateTime))
			}
			if output != "" {
				if err := os.WriteFile(output, []byte(data.SignatureSVG+"\n"), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "agent name (required)")
	cmd.Flags().StringVar(&req.Model, "model", req.Model, "model, selects the color scheme")
	_ = cmd.RegisterFlagCompletionFunc("model", completeModels)
	cmd.Flags().StringVar(&req.Theme, "theme", "", "agent theme (required)")
	cmd.Flags().IntVar(&req.SkillsCount, "skills", req.SkillsCount, "skill count (1-20)")
	cmd.Flags().StringVar(&req.ClaimedBy, "by", "", "who is claiming the signature")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the claimed SVG to this file")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("theme")

	return cmd
}

// claimFailure explains an already-claimed signature before returning the error.
func claimFailure(err error) error {
	if e, ok := errors.As(err); ok && e.Code == errors.ErrCodeAlreadyClaimed {
		if a, ok := e.Detail.(*store.Agent); ok {
			printWarning("Signature #%s already belongs to %s", a.SignatureID, a.Name)
			if a.ClaimedBy != nil {
				printDetail("claimed by %s", *a.ClaimedBy)
			}
		}
	}
	return err
}

// voteCommand creates the vote command.
func (c *CLI) voteCommand() *cobra.Command {
	var req service.VoteRequest

	cmd := &cobra.Command{
		Use:     "vote <signature-id> <category>",
		Short:   "Vote for a claimed signature",
		Example: `  clawdsign vote 7A8F4465 creativity --voter me@example.com`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SignatureID, req.Category = args[0], args[1]
			cl, err := c.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			spinner := newSpinnerWithContext(ctx, "Submitting vote...")
			spinner.Start()
			resp, err := cl.Vote(ctx, req)
			if err != nil {
				spinner.StopWithError(errors.UserMessage(err))
				return err
			}
			spinner.StopWithSuccess(resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.VoterID, "voter", "", "voter id; repeated votes by the same voter are rejected")
	return cmd
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show server statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.fetchStats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(st)
			return nil
		},
	}
}

func (c *CLI) fetchStats(ctx context.Context) (*service.Stats, error) {
	cl, err := c.newClient()
	if err != nil {
		return nil, err
	}
	spinner := newSpinnerWithContext(ctx, "Fetching stats...")
	spinner.Start()
	defer spinner.Stop()
	return cl.Stats(ctx)
}

func printStats(st *service.Stats) {
	fmt.Println(StyleTitle.Render("ClawdSign"))
	printKeyValue("Agents", StyleNumber.Render(strconv.FormatInt(st.TotalAgents, 10)))
	printKeyValue("Claimed", StyleNumber.Render(strconv.FormatInt(st.ClaimedSignatures, 10)))
	printKeyValue("Votes", StyleNumber.Render(strconv.FormatInt(st.TotalVotes, 10)))
	printNewline()

	if len(st.RecentAgents) == 0 {
		printInfo("No signatures claimed yet")
		return
	}
	fmt.Println(StyleTitle.Render("Recently claimed"))
	rows := make([][]string, len(st.RecentAgents))
	for i, a := range st.RecentAgents {
		rows[i] = []string{"#" + a.SignatureID, a.Name, a.Model, formatRelativeTime(a.CreatedAt, time.Now())}
	}
	fmt.Println(table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Signature", "Name", "Model", "Claimed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleValue
		}).
		Render())
	printNextStep("Live leaderboard", appName+" top")
}
