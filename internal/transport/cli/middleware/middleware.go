package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type RunE func(cmd *cobra.Command, args []string) error

type Action func(ctx context.Context) error

// Logger gives every command run its own rqID and logs its duration.
func Logger() func(RunE) RunE {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			ctx := utils.WithRequestID(contextOf(cmd), uuid.NewString())
			cmd.SetContext(ctx)

			return logged(ctx, cmd.CommandPath(), func(context.Context) error {
				return next(cmd, args)
			})
		}
	}
}

// Recover turns a panic inside a command into an error.
func Recover() func(RunE) RunE {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error(
						"Panic recovered in command",
						slog.String("rqID", utils.GetRequestIDFromCtx(contextOf(cmd))),
						slog.String("command", cmd.CommandPath()),
						slog.Any("panic", r),
						slog.String("stacktrace", string(debug.Stack())),
					)
					err = fmt.Errorf("internal error: %v", r)
				}
			}()
			return next(cmd, args)
		}
	}
}

// Chain applies mws so that the first one is the outermost.
func Chain(next RunE, mws ...func(RunE) RunE) RunE {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}

// LoggedAction runs one interactive-shell action under a fresh rqID.
func LoggedAction(parent context.Context, name string, fn Action) error {
	return logged(utils.WithRequestID(parent, uuid.NewString()), name, fn)
}

func logged(ctx context.Context, name string, fn Action) error {
	now := time.Now()
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Info("start request", slog.String("rqID", rqID), slog.String("command", name))

	defer func() {
		slog.Info(
			"request finished",
			slog.String("rqID", rqID),
			slog.String("command", name),
			slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
		)
	}()

	return fn(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
