package glbridge

import (
	"context"
	"errors"
	"time"

	"github.com/james-see/voicebridge/pkg/pattern"
)

// ErrStopLoop ends Loop without an error when returned from the callback.
var ErrStopLoop = errors.New("stop loop")

// Frame describes one tick of the frame loop.
type Frame struct {
	Index   int
	Elapsed time.Duration
	Cycle   pattern.Fraction
}

// Loop calls fn fps times per second until ctx is done, fn returns
// ErrStopLoop, or fn fails. It runs on the caller's goroutine and returns
// nil unless fn failed.
func (h *Handle) Loop(ctx context.Context, fps int, fn func(Frame) error) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return nil
		}
		f := Frame{Index: i, Elapsed: time.Since(start), Cycle: h.clock.Now()}
		if err := fn(f); err != nil {
			if errors.Is(err, ErrStopLoop) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
