package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/pipeline"
	"github.com/matzehuels/railfence/pkg/render"
)

// cipherOpts holds the flags shared by encode and decode.
type cipherOpts struct {
	rails   int
	show    bool
	refresh bool
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	return c.cipherCommand(pipeline.OpEncode, "encode [text]", "Encrypt text with the rail-fence cipher",
		`Encrypt text by writing it in a zig-zag across the rails and reading the
rails top to bottom. When no argument is given the text is read from stdin.`,
		`  railfence encode WEAREDISCOVEREDFLEEATONCE
  railfence encode -r 4 --show "HELLO WORLD"
  echo -n secret | railfence encode`)
}

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	return c.cipherCommand(pipeline.OpDecode, "decode [text]", "Decrypt rail-fence ciphertext",
		`Decrypt ciphertext produced with the same number of rails. When no argument
is given the text is read from stdin.`,
		`  railfence decode WECRLTEERDSOEEFEAOCAIVDEN
  railfence decode -r 4 --show "HOREL OLLWD"`)
}

func (c *CLI) cipherCommand(op, use, short, long, example string) *cobra.Command {
	var opts cipherOpts

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		Example: example,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.readText(args)
			if err != nil {
				return err
			}
			return c.runCipher(cmd, op, text, c.rails(cmd, opts.rails), opts)
		},
	}

	addRailsFlag(cmd, &opts.rails)
	cmd.Flags().BoolVar(&opts.show, "show", false, "draw the fence on stderr")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runCipher(cmd *cobra.Command, op, text string, rails int, opts cipherOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Options{
		Mode:      pipeline.ModeText,
		Operation: op,
		Rails:     rails,
		Text:      text,
		Visualize: opts.show,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	if opts.show && res.Grid != nil {
		if err := render.CheckSize(*res.Grid); err != nil {
			printInfo(c.Err, "%s", errors.UserMessage(err))
		} else {
			fmt.Fprint(c.Err, fence(*res.Grid))
		}
	}
	fmt.Fprintln(c.Out, res.Text)

	c.Logger.Debugf("%sd %d symbols on %d rails (cached=%t, %s)",
		op, res.Length, res.Rails, res.CacheHit, res.Duration)
	return nil
}

// readText returns the single argument, or stdin with one trailing newline
// removed.
func (c *CLI) readText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(c.In)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
	}
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}
