package startup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trackdesk/desktop-bridge/internal/catalog"
	"github.com/trackdesk/desktop-bridge/internal/executil"
)

// Run executes catalog-declared warm-up hooks sequentially before the
// bridge starts serving. A failing hook aborts startup.
func Run(ctx context.Context, hooks []catalog.HookConfig, logger *slog.Logger) error {
	for idx, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			continue
		}
		hookCtx := ctx
		var cancel context.CancelFunc
		if strings.TrimSpace(hook.Timeout) != "" {
			timeout, err := time.ParseDuration(hook.Timeout)
			if err != nil {
				return fmt.Errorf("startup hook %d: invalid timeout: %w", idx, err)
			}
			hookCtx, cancel = context.WithTimeout(ctx, timeout)
		}

		if logger != nil {
			logger.Info("running startup hook", "index", idx)
		}

		output, _, err := executil.RunCommand(hookCtx, hook.Command, hook.Args, hook.Env, executil.TemplateData{})
		if cancel != nil {
			cancel()
		}
		output = strings.TrimSpace(output)
		if err != nil {
			if logger != nil && output != "" {
				logger.Error("startup hook failed", "index", idx, "output", output)
			}
			return fmt.Errorf("startup hook %d failed: %w", idx, err)
		}
		if logger != nil && output != "" {
			logger.Info("startup hook output", "index", idx, "output", output)
		}
	}
	return nil
}
