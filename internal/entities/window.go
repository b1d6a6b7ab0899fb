package entities

import "time"

// Window is a half-open time interval [Start, End) during which a pickup
// or drop-off takes place.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the window is well formed (end strictly after start).
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// Overlaps applies the half-open interval test: s1 < e2 AND s2 < e1.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
