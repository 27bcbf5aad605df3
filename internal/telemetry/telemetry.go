// Package telemetry emits a single best-effort, fire-and-forget event per
// bril-cli invocation: the subcommand name only, never program text or
// flag values. It is opt-out via --disable-metrics / BRIL_DISABLE_METRICS.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Sink receives telemetry events. The default sink just logs locally;
// a real backend can be substituted without touching call sites.
type Sink interface {
	Send(ctx context.Context, runID, event string) error
}

// logSink logs the event through the standard logger. No network SDK is
// wired in: there is no concrete telemetry backend in this environment,
// and this leaves room for one without forcing a choice.
type logSink struct{}

func (logSink) Send(_ context.Context, runID, event string) error {
	log.Printf("telemetry run=%s event=%s", runID, event)
	return nil
}

var defaultSink Sink = logSink{}

var runID = uuid.New().String()

const sendTimeout = 500 * time.Millisecond

// Report fires event on a short-lived goroutine bounded by sendTimeout. It
// never blocks the caller and swallows any error, per spec's fire-and-
// forget contract.
func Report(enabled bool, event string) {
	if !enabled {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		_ = defaultSink.Send(ctx, runID, event)
	}()
}
