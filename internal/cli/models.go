package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/signature"
)

// modelsCommand lists the models with a dedicated color scheme.
func (c *CLI) modelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models and their signature colors",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(renderModels())
			printDetail("Unknown models use the %s colors.", signature.DefaultModel)
		},
	}
}

func renderModels() string {
	models := signature.Models()
	rows := make([][]string, len(models))
	for i, m := range models {
		s := signature.SchemeFor(m)
		name := m
		if m == signature.DefaultModel {
			name += " (default)"
		}
		rows[i] = []string{
			name,
			swatch(s.Primary) + " " + s.Primary,
			swatch(s.Secondary) + " " + s.Secondary,
			swatch(s.Background) + " " + s.Background,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Model", "Primary", "Secondary", "Background").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
