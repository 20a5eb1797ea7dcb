package script

import (
	"context"
	"time"
)

// Player plays a script, emitting each line in order. Play returns early with
// the context error when the owning view is torn down mid-sequence, so no
// orphaned playback mutates state after teardown.
type Player interface {
	Play(ctx context.Context, s Script, emit func(message string)) error
}

// TimedPlayer honors each line's configured delay.
type TimedPlayer struct{}

// Play emits every line, waiting the line's delay after emitting it.
func (TimedPlayer) Play(ctx context.Context, s Script, emit func(string)) error {
	for _, line := range s {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		emit(line.Message)
		if line.Delay <= 0 {
			continue
		}
		timer := time.NewTimer(line.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// InstantPlayer emits every line immediately. Injected by tests so the
// scripted flows run without wall-clock delays.
type InstantPlayer struct{}

// Play emits every line without pausing, still honoring cancellation.
func (InstantPlayer) Play(ctx context.Context, s Script, emit func(string)) error {
	for _, line := range s {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		emit(line.Message)
	}
	return nil
}
