package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/service"
	"github.com/matzehuels/clawdsign/pkg/signature"
)

const (
	formatSVG  = "svg"  // rendered signature
	formatJSON = "json" // constellation layout for external renderers
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	name   string
	model  string
	theme  string
	skills int
	output string // output file; stdout when empty
	format string
}

// generateCommand creates the offline generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		model:  signature.DefaultModel,
		skills: 5,
		format: formatSVG,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a signature locally without claiming it",
		Example: `  clawdsign generate --name Atlas --model gpt-4 --theme explorer --skills 6 -o atlas.svg
  clawdsign generate --name Atlas --theme explorer --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "agent name (required)")
	cmd.Flags().StringVar(&opts.model, "model", opts.model, "model, selects the color scheme (see 'clawdsign models')")
	_ = cmd.RegisterFlagCompletionFunc("model", completeModels)
	cmd.Flags().StringVar(&opts.theme, "theme", "", "agent theme (required)")
	cmd.Flags().IntVar(&opts.skills, "skills", opts.skills, "skill count (1-20)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, json")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("theme")

	return cmd
}

func runGenerate(w io.Writer, opts generateOpts) error {
	req := service.ClaimRequest{Name: opts.name, Model: opts.model, Theme: opts.theme, SkillsCount: opts.skills}
	if err := service.ValidateClaim(req); err != nil {
		return err
	}
	sreq := signature.Request{Name: req.Name, Model: req.Model, Theme: req.Theme, SkillsCount: req.SkillsCount}

	c := signature.Layout(sreq)

	var data []byte
	switch opts.format {
	case formatSVG:
		data = []byte(signature.RenderSVG(c) + "\n")
	case formatJSON:
		out, err := signature.RenderJSON(c)
		if err != nil {
			return err
		}
		data = append(out, '\n')
	default:
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", opts.format)
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Generated signature %s", StyleHighlight.Render("#"+c.SignatureID))
	printFile(opts.output)
	printNextStep("Claim it", fmt.Sprintf("%s claim --name %q --model %q --theme %q --skills %d",
		appName, opts.name, opts.model, opts.theme, opts.skills))
	return nil
}
