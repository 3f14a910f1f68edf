package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Middleware runs before a command and may refuse it or enrich its context.
type Middleware func(cmd *cobra.Command, args []string) error

type userKey struct{}

// WithUser records the operator running the command.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// User is the operator set by the session middleware, or "" on public commands.
func User(ctx context.Context) string {
	if u, ok := ctx.Value(userKey{}).(string); ok {
		return u
	}
	return ""
}

// NewRoot builds the top-level command. Commands are attached with Group,
// AddCommand and Use.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:               "inventory",
		Short:             "Stock catalog and outflow ledger",
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q", strings.Join(args, " "))
			}
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})
	return root
}

// Group adds a parent command. Every subcommand runs mw first.
func Group(parent *cobra.Command, use, short string, mw ...Middleware) *cobra.Command {
	g := &cobra.Command{Use: use, Short: short}
	if len(mw) > 0 {
		g.PersistentPreRunE = chain(mw)
	}
	parent.AddCommand(g)
	return g
}

// Use makes cmd run mw, in order, before its own body.
func Use(cmd *cobra.Command, mw ...Middleware) *cobra.Command {
	cmd.PreRunE = chain(mw)
	return cmd
}

func chain(mw []Middleware) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for _, m := range mw {
			if err := m(cmd, args); err != nil {
				return err
			}
		}
		return nil
	}
}

type Runner struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRunner(log *zap.Logger, m *metrics.Metrics) *Runner {
	return &Runner{log: log, metrics: m}
}

// Run executes args against root and returns the process exit code:
// 0 on success or help, 2 on bad command-line input, 1 when the operation failed.
func (r *Runner) Run(ctx context.Context, root *cobra.Command, args []string, in io.Reader, out, errOut io.Writer) int {
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if isUsageError(err) {
		fmt.Fprintf(errOut, "%v\nusage: %s\n", err, cmd.UseLine())
		return 2
	}

	r.metrics.ObserveError(err)
	if errors.Is(err, apperr.ErrStorage) {
		r.log.Error("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
	} else {
		r.log.Debug("command rejected", zap.String("command", cmd.CommandPath()), zap.Error(err))
	}
	fmt.Fprintln(errOut, apperr.UserMessage(err))
	return 1
}

// usageError marks bad command-line input, as opposed to a rejected operation.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

// maxArgs is cobra.MaximumNArgs reported as a usage error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > n {
			return usageErrorf("accepts at most %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
