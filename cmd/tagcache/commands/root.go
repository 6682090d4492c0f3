// Package commands implements the tagcache command line interface.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmgilman/go/fs/core"
	"github.com/jmgilman/go/tags"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/jmgilman/go/tags/repo"
	"github.com/spf13/cobra"
)

// Opener opens the repository at path.
type Opener func(path string) (*repo.Repository, error)

// CLI represents the tagcache command line interface.
type CLI struct {
	rootCmd *cobra.Command
	open    Opener
	cacheFS core.FS

	repoPath string
	logLevel string
	trace    bool

	disableTags bool
	clearMarker bool
	showHidden  bool
}

// Option configures a CLI.
type Option func(*CLI)

// WithOpener replaces how repositories are opened. Used for testing.
func WithOpener(open Opener) Option {
	return func(c *CLI) {
		c.open = open
	}
}

// WithCacheFS places the cache artifacts on fsys. Used for testing.
func WithCacheFS(fsys core.FS) Option {
	return func(c *CLI) {
		c.cacheFS = fsys
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tagcache",
		Short:         "Resolve and cache repository tags",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{
		rootCmd: rootCmd,
		open: func(path string) (*repo.Repository, error) {
			return repo.Open(path)
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().StringVarP(&c.repoPath, "repo", "R", ".", "Path to the repository")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Minimum level of diagnostic events (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&c.trace, "trace", false, "Print every diagnostic event to stderr")

	rootCmd.AddCommand(c.newTagsCmd())
	rootCmd.AddCommand(c.newHeadsCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newObsoleteCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// handler returns the slog handler diagnostic events are written to.
func (c *CLI) handler(cmd *cobra.Command) (slog.Handler, error) {
	level := logging.LogLevelDebug
	if !c.trace {
		var err error
		level, err = logging.ParseLogLevel(c.logLevel)
		if err != nil {
			return nil, err
		}
	}

	return logging.NewHandler(logging.LogConfig{
		Level:  level,
		Output: cmd.ErrOrStderr(),
	}), nil
}

func (c *CLI) repository() (*repo.Repository, error) {
	r, err := c.open(c.repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", c.repoPath, err)
	}
	return r, nil
}

// engine opens the repository and builds an engine that logs through the
// command's handler.
func (c *CLI) engine(cmd *cobra.Command, opts ...tags.Option) (*tags.Engine, error) {
	handler, err := c.handler(cmd)
	if err != nil {
		return nil, err
	}
	r, err := c.repository()
	if err != nil {
		return nil, err
	}

	all := []tags.Option{tags.WithLogHandler(handler)}
	if c.cacheFS != nil {
		all = append(all, tags.WithCacheFS(c.cacheFS))
	}

	return tags.New(r, append(all, opts...)...)
}

// run wraps a command that does not go through Engine.Tags with the same
// command and command exited events.
func (c *CLI) run(cmd *cobra.Command, op logging.Operation, fn func(ctx context.Context) error) (err error) {
	handler, err := c.handler(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := logging.NewLoggerWithHandler(handler).WithOperation(op)
	start := time.Now()

	logging.LogCommand(ctx, logger, op)
	defer func() {
		logging.LogCommandExited(ctx, logger, op, tags.ExitStatus(err), time.Since(start))
	}()

	return fn(ctx)
}
