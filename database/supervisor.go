package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/dbkeep"
)

// ConnectWithRetry resolves cfg, opens a connection and probes it, retrying
// every backoff interval until an attempt succeeds or the timeout elapses.
//
// A failed attempt closes its connection before the next one starts. On
// success the caller owns result.Conn. Configuration errors are returned
// at once. When the timeout elapses the error wraps dbkeep.ErrConnectTimeout
// and the last attempt's error.
func ConnectWithRetry(ctx context.Context, cfg dbkeep.BackendConfig, opts ...Option) (dbkeep.CheckResult, error) {
	o := newOptions(opts)

	desc, err := Resolve(cfg)
	if err != nil {
		return dbkeep.CheckResult{}, fmt.Errorf("connect: %w", err)
	}

	logger := o.logger.With("session", uuid.NewString(), "target", desc.String())
	start := time.Now()
	deadline := start.Add(o.timeout)

	for attempt := 1; ; attempt++ {
		result, err := connectOnce(ctx, deadline, o.opener, desc)
		if err == nil {
			o.metrics.connectAttempt(resultSuccess)
			logger.Info("connected to database",
				"attempt", attempt,
				"ready", result.Ready,
				"latest_migration", result.LatestMigration,
			)
			return result, nil
		}
		o.metrics.connectAttempt(resultFailure)

		if isConfigError(err) {
			return dbkeep.CheckResult{}, fmt.Errorf("connect: %w", err)
		}

		elapsed := time.Since(start)
		if elapsed >= o.timeout {
			logger.Error("giving up connecting to database", "attempts", attempt, "elapsed", elapsed, "err", err)
			return dbkeep.CheckResult{}, fmt.Errorf("%w after %s (%d attempts): %w",
				dbkeep.ErrConnectTimeout, elapsed.Round(time.Millisecond), attempt, err)
		}

		logger.Warn("could not connect to database, retrying",
			"attempt", attempt,
			"elapsed", elapsed,
			"backoff", o.backoff,
			"err", err,
		)

		if waitErr := wait(ctx, o.backoff); waitErr != nil {
			return dbkeep.CheckResult{}, fmt.Errorf("connect: %w (last error: %w)", waitErr, err)
		}
	}
}

// connectOnce runs a single attempt. The attempt shares the supervisor's
// deadline, so a dial that hangs cannot outlive the timeout.
func connectOnce(ctx context.Context, deadline time.Time, open Opener, desc dbkeep.Descriptor) (dbkeep.CheckResult, error) {
	attemptCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := open(attemptCtx, desc)
	if err != nil {
		return dbkeep.CheckResult{}, err
	}

	result, err := Probe(attemptCtx, conn)
	if err != nil {
		_ = conn.Close()
		return dbkeep.CheckResult{}, err
	}

	result.Conn = conn
	return result, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, dbkeep.ErrUnsupportedBackend) || errors.Is(err, dbkeep.ErrMissingConfig)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
