package geolocation

import (
	"context"
	"errors"
	"log"
	"net/url"
	"time"
)

// ErrInsecureContext is returned when the sink endpoint does not use a
// secure transport. Sharing must not start at all in that case.
var ErrInsecureContext = errors.New("location sharing requires a secure context")

// Sample is one position attributed to an actor, ready for submission.
type Sample struct {
	ActorID  string
	TripID   string
	Position Position
}

// Sink receives samples from the sharing loop. A returned error stops
// the stream; the sink must not retry on the sharer's behalf.
type Sink interface {
	Submit(ctx context.Context, sample Sample) error
}

// Sharer pumps positions from a device Provider into a Sink on behalf
// of one actor. One sample is in flight at a time, so submissions for
// the actor cannot race each other out of order.
type Sharer struct {
	provider Provider
	sink     Sink
	opts     Options
}

// NewSharer creates a Sharer.
func NewSharer(provider Provider, sink Sink, opts Options) *Sharer {
	return &Sharer{provider: provider, sink: sink, opts: opts}
}

// CheckEndpoint verifies the secure-context precondition for the given
// sink endpoint: https always qualifies, plain http only on loopback.
func CheckEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ErrInsecureContext
	}
	if u.Scheme == "https" {
		return nil
	}
	if u.Scheme == "http" && (u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1" || u.Hostname() == "::1") {
		return nil
	}
	return ErrInsecureContext
}

// Share runs the sharing loop until ctx is cancelled, the watch is
// stopped, or the sink rejects a write. The returned Watch handle stops
// the stream; Share itself returns the terminal error, nil on a clean
// stop.
//
// Stale fixes (older than MaxSampleAge) are discarded. A per-sample
// timeout aborts that submission attempt without ending the stream;
// any other sink error ends it.
func (s *Sharer) Share(ctx context.Context, actorID, tripID string) (*Watch, <-chan error) {
	errc := make(chan error, 1)

	watch, err := s.provider.WatchPosition(ctx, s.opts)
	if err != nil {
		errc <- err
		close(errc)
		stopped := make(chan Position)
		close(stopped)
		return NewWatch(stopped, func() {}), errc
	}

	go func() {
		defer close(errc)
		for pos := range watch.C {
			if s.opts.MaxSampleAge > 0 && time.Since(pos.Timestamp) > s.opts.MaxSampleAge {
				continue
			}

			submitCtx := ctx
			var cancel context.CancelFunc
			if s.opts.Timeout > 0 {
				submitCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			}

			err := s.sink.Submit(submitCtx, Sample{ActorID: actorID, TripID: tripID, Position: pos})
			if cancel != nil {
				cancel()
			}

			if err == nil {
				continue
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// One slow submission does not end the stream.
				log.Printf("geolocation: sample submit timed out for actor %s", actorID)
				continue
			}

			watch.Stop()
			errc <- err
			return
		}
	}()

	return watch, errc
}
