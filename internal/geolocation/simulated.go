package geolocation

import (
	"context"
	"time"
)

// SimulatedProvider replays positions along a straight line between two
// points at a fixed cadence. Used by the sharing agent when no real
// device feed is attached.
type SimulatedProvider struct {
	StartLat, StartLng float64
	EndLat, EndLng     float64
	Steps              int
	Interval           time.Duration
}

// CurrentPosition returns the starting point.
func (p *SimulatedProvider) CurrentPosition(ctx context.Context, opts Options) (*Position, error) {
	return &Position{Lat: p.StartLat, Lng: p.StartLng, Timestamp: time.Now()}, nil
}

// WatchPosition emits interpolated positions until the route is done,
// the context is cancelled, or the watch is stopped.
func (p *SimulatedProvider) WatchPosition(ctx context.Context, opts Options) (*Watch, error) {
	steps := p.Steps
	if steps < 2 {
		steps = 2
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	out := make(chan Position)
	stopped := make(chan struct{})

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		speed := 10.0
		for i := 0; i < steps; i++ {
			frac := float64(i) / float64(steps-1)
			pos := Position{
				Lat:       p.StartLat + (p.EndLat-p.StartLat)*frac,
				Lng:       p.StartLng + (p.EndLng-p.StartLng)*frac,
				Speed:     &speed,
				Timestamp: time.Now(),
			}

			select {
			case out <- pos:
			case <-ctx.Done():
				return
			case <-stopped:
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			case <-stopped:
				return
			}
		}
	}()

	return NewWatch(out, func() { close(stopped) }), nil
}

// Ensure SimulatedProvider implements Provider.
var _ Provider = (*SimulatedProvider)(nil)
