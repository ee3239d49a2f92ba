package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/render"
)

// visualizeOpts holds the visualize command flags.
type visualizeOpts struct {
	rails  int
	format string
	output string
}

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var opts visualizeOpts

	cmd := &cobra.Command{
		Use:     "visualize [text]",
		Aliases: []string{"viz"},
		Short:   "Draw the rail fence of a text",
		Long: `Draw where each symbol of the text lands on the fence. Text, HTML, JSON
and DOT are written to stdout unless -o is given. SVG is text as well; PNG
and PDF need -o.`,
		Example: `  railfence visualize WEAREDISCOVERED
  railfence visualize -r 4 -f svg -o fence.svg "HELLO WORLD"
  railfence visualize -f json HELLO`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.readText(args)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd, text, c.rails(cmd, opts.rails), opts)
		},
	}

	addRailsFlag(cmd, &opts.rails)
	cmd.Flags().StringVarP(&opts.format, "format", "f", render.FormatText, "output format (text, html, json, dot, svg, png, pdf)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "html", "json", "dot", "svg", "png", "pdf"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runVisualize(cmd *cobra.Command, text string, rails int, opts visualizeOpts) error {
	if err := render.ValidateFormat(opts.format); err != nil {
		return err
	}
	if render.IsBinary(opts.format) && opts.output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s output is binary; use -o to write it to a file", opts.format)
	}

	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, cached, err := runner.Visualize(ctx, text, rails, opts.format)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := c.Out.Write(data)
		return err
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(c.Err, "Rendered %s", opts.format)
	printStats(c.Err, []string{fmt.Sprintf("%d rails", rails), fmt.Sprintf("%d bytes", len(data))}, cached)
	printFile(c.Err, opts.output)
	prog.done("rendered " + opts.format)
	return nil
}
