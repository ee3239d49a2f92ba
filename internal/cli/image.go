package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/pipeline"
)

// imageOpts holds the image command flags.
type imageOpts struct {
	rails   int
	output  string
	refresh bool
}

// imageCommand creates the image command.
func (c *CLI) imageCommand() *cobra.Command {
	var opts imageOpts

	cmd := &cobra.Command{
		Use:   "image <encode|decode> <input>",
		Short: "Scramble or restore the pixels of an image",
		Long: `Apply the rail-fence cipher to the raw pixel bytes of an image. The image
keeps its dimensions and channel count and is always written as PNG, since a
lossy format would destroy the scrambled bytes.`,
		Example: `  railfence image encode photo.png
  railfence image decode photo.encoded.png -o photo.png
  railfence image encode -r 7 photo.jpg -o scrambled.png`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return []string{pipeline.OpEncode, pipeline.OpDecode}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			op := args[0]
			if err := pipeline.ValidateOperation(op); err != nil {
				return err
			}
			return c.runImage(cmd, op, args[1], c.rails(cmd, opts.rails), opts)
		},
	}

	addRailsFlag(cmd, &opts.rails)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG path (default <input>.<op>d.png)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runImage(cmd *cobra.Command, op, input string, rails int, opts imageOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", input)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, c.Err, fmt.Sprintf("%s %s...", strings.TrimSuffix(op, "e")+"ing", filepath.Base(input)))
	spinner.Start()

	res, err := runner.Execute(ctx, pipeline.Options{
		Mode:      pipeline.ModeImage,
		Operation: op,
		Rails:     rails,
		Image:     data,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	})
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.Stop()

	out := opts.output
	if out == "" {
		out = defaultImageOutput(input, op)
	}
	if err := os.WriteFile(out, res.Image, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess(c.Err, "%sd %s", op, filepath.Base(input))
	printStats(c.Err, []string{
		fmt.Sprintf("%dx%d", res.Width, res.Height),
		fmt.Sprintf("%d channels", res.Channels),
		fmt.Sprintf("%d rails", res.Rails),
	}, res.CacheHit)
	printFile(c.Err, out)

	prog.done(fmt.Sprintf("%sd %dx%d image", op, res.Width, res.Height))
	return nil
}

// defaultImageOutput derives "<base>.encoded.png" or "<base>.decoded.png"
// next to input.
func defaultImageOutput(input, op string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + op + "d.png"
}
