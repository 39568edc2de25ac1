package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// WaitOptions control WaitForProxy.
type WaitOptions struct {
	// Attempts is the number of checks, at least one.
	Attempts uint

	// Delay is the pause between checks.
	Delay time.Duration

	// Logger receives a debug line per retry. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultWaitOptions returns three checks half a second apart.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{Attempts: 3, Delay: 500 * time.Millisecond}
}

// WaitForProxy checks the proxy in s until it is ready, retrying while the
// failure looks transient. A proxy that answers with the wrong protocol
// fails at once.
func WaitForProxy(ctx context.Context, s Settings, opts WaitOptions) error {
	if s.proxy == nil {
		return nil
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	last := ProxyStatusOK
	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.Delay),
		retry.RetryIf(func(error) bool { return last.Transient() }),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("proxy not ready, retrying", "attempt", n+1, "proxy", s.RedactedProxyURL(), "error", err)
		}),
	}
	if jitter := opts.Delay / 4; jitter > 0 {
		retryOpts = append(retryOpts, retry.MaxJitter(jitter))
	}

	_, err := retry.DoWithData(
		func() (ProxyStatus, error) {
			last = CheckProxy(ctx, s)
			return last, last.Error()
		},
		retryOpts...,
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("proxy %s is not usable: %w", s.RedactedProxyURL(), last.Error())
	}
	return nil
}
