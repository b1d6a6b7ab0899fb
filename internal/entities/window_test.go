package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOverlaps(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2026, time.March, 2, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"identical", Window{at(9), at(11)}, Window{at(9), at(11)}, true},
		{"partial overlap", Window{at(9), at(11)}, Window{at(10), at(12)}, true},
		{"contained", Window{at(9), at(12)}, Window{at(10), at(11)}, true},
		{"touching endpoints", Window{at(9), at(11)}, Window{at(11), at(13)}, false},
		{"disjoint", Window{at(9), at(10)}, Window{at(14), at(15)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestWindowValid(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	assert.True(t, Window{Start: start, End: start.Add(time.Hour)}.Valid())
	assert.False(t, Window{Start: start, End: start}.Valid())
	assert.False(t, Window{Start: start, End: start.Add(-time.Hour)}.Valid())
}
