package geolocation

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrPermissionDenied is returned when the device refuses location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrPositionUnavailable is returned when no fix can be obtained.
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Options configures a position request or watch.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration // per-sample acquisition timeout
	MaxSampleAge time.Duration // samples older than this are discarded
}

// Position is one device position fix.
type Position struct {
	Lat       float64
	Lng       float64
	Heading   *float64 // degrees, nil when unknown
	Speed     *float64 // meters per second, nil when unknown
	Timestamp time.Time
}

// Provider abstracts the device geolocation source.
type Provider interface {
	// CurrentPosition obtains a single fix.
	CurrentPosition(ctx context.Context, opts Options) (*Position, error)

	// WatchPosition starts a continuous position stream. The returned
	// handle is owned by the caller and is the only way to stop the
	// stream; there is no process-wide watch state.
	WatchPosition(ctx context.Context, opts Options) (*Watch, error)
}

// Watch is an active position stream. Positions arrive on C until the
// watch is stopped, after which C is closed.
type Watch struct {
	C <-chan Position

	stop func()
	once sync.Once
}

// NewWatch builds a watch over the given channel. stop is invoked
// exactly once, on the first Stop call.
func NewWatch(c <-chan Position, stop func()) *Watch {
	return &Watch{C: c, stop: stop}
}

// Stop ends the stream. It is synchronous, idempotent, and safe to
// call any number of times.
func (w *Watch) Stop() {
	w.once.Do(w.stop)
}
