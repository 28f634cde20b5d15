package domain

import "time"

// LocationSample is one timestamped device position for an actor.
// The samples table is append-only: every update is a new row, never an
// in-place mutation. Only the row with the greatest timestamp per actor
// is presented; older rows are retained for history.
type LocationSample struct {
	ID         string
	ActorID    string
	TripID     string // optional; empty when the actor is not on a trip
	Lat        float64
	Lng        float64
	Heading    *float64 // degrees, nil when the device did not report one
	Speed      *float64 // meters per second, nil when unknown
	RecordedAt time.Time
}

// Moving reports whether the sample carries a nonzero speed. Used for
// marker styling only, never for control decisions.
func (s *LocationSample) Moving() bool {
	return s.Speed != nil && *s.Speed > 0
}

// LatestPerActor reduces a set of samples to at most one per actor id:
// the one with the greatest timestamp. Input ordering is irrelevant; an
// actor's entry is replaced only on a strictly greater timestamp, so a
// timestamp tie keeps whichever row was seen first and repeated runs on
// the same snapshot agree.
func LatestPerActor(samples []*LocationSample) map[string]*LocationSample {
	latest := make(map[string]*LocationSample, len(samples))
	for _, s := range samples {
		cur, ok := latest[s.ActorID]
		if !ok || s.RecordedAt.After(cur.RecordedAt) {
			latest[s.ActorID] = s
		}
	}
	return latest
}
