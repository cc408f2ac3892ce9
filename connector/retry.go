package connector

import (
	"context"
	"time"

	"github.com/Konsultn-Engineering/registrar/logging"
)

// retry calls fn until it succeeds, ctx ends or the attempts run out. The
// delay grows by opts.Backoff after every failure and is capped by MaxDelay.
func retry(ctx context.Context, opts RetryConfig, fn func(context.Context) error) error {
	delay := opts.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	factor := opts.Backoff
	if factor < 1 {
		factor = 2
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= opts.MaxRetries {
			return err
		}

		logging.Warn().Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("database connect failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * factor)
		if opts.MaxDelay > 0 && delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
}
