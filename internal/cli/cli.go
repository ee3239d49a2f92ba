// Package cli implements the railfence command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/internal/config"
	"github.com/matzehuels/railfence/pkg/buildinfo"
	"github.com/matzehuels/railfence/pkg/cache"
	"github.com/matzehuels/railfence/pkg/observability"
	"github.com/matzehuels/railfence/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "railfence"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// In, Out and Err default to the process streams. Results go to Out,
	// status lines and fences to Err.
	In  io.Reader
	Out io.Writer
	Err io.Writer

	cfg        config.Config
	configPath string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Railfence transposes text and images with the rail-fence cipher",
		Long: `Railfence writes a sequence in a zig-zag across a number of rails and reads
it back rail by rail. It works on text, on the raw pixel bytes of images, and
can draw the fence as text, HTML, JSON, DOT, SVG, PNG or PDF.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetIn(c.In)
	root.SetOut(c.Out)
	root.SetErr(c.Err)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/railfence/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable result caching")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.imageCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration before any subcommand runs.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if level <= LogDebug {
		observability.NewLogHooks(c.Logger).Register()
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	// Keys are scoped by release.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.ResultTTL = c.cfg.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheRedis:
		store, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.cfg.Cache.RedisAddr,
			Password: c.cfg.Cache.RedisPassword,
			DB:       c.cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CacheNone:
		return cache.NewNullCache(), nil
	default:
		store, err := cache.NewFileCache(c.cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", c.cfg.Cache.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	}
}

// rails returns the --rails flag value, or the configured default when the
// flag was not given.
func (c *CLI) rails(cmd *cobra.Command, flag int) int {
	if cmd.Flags().Changed("rails") {
		return flag
	}
	return c.cfg.Cipher.DefaultRails
}

// addRailsFlag registers --rails/-r on cmd.
func addRailsFlag(cmd *cobra.Command, rails *int) {
	cmd.Flags().IntVarP(rails, "rails", "r", pipeline.DefaultRails, "number of rails (at least 2)")
}
