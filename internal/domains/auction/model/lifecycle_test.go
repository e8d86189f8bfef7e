package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseAuction(status string, start, end time.Time) *Auction {
	return &Auction{
		Status:    status,
		StartTime: start,
		EndTime:   end,
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   string
		start    time.Time
		end      time.Time
		expected string
	}{
		{
			name:     "upcoming before start stays upcoming",
			status:   StatusUpcoming,
			start:    now.Add(time.Hour),
			end:      now.Add(2 * time.Hour),
			expected: StatusUpcoming,
		},
		{
			name:     "upcoming past start is live",
			status:   StatusUpcoming,
			start:    now.Add(-time.Minute),
			end:      now.Add(time.Hour),
			expected: StatusLive,
		},
		{
			name:     "upcoming at exact start is live",
			status:   StatusUpcoming,
			start:    now,
			end:      now.Add(time.Hour),
			expected: StatusLive,
		},
		{
			name:     "upcoming past end skips straight to ended",
			status:   StatusUpcoming,
			start:    now.Add(-2 * time.Hour),
			end:      now.Add(-time.Hour),
			expected: StatusEnded,
		},
		{
			name:     "live before end stays live",
			status:   StatusLive,
			start:    now.Add(-time.Hour),
			end:      now.Add(time.Hour),
			expected: StatusLive,
		},
		{
			name:     "live past end is ended",
			status:   StatusLive,
			start:    now.Add(-2 * time.Hour),
			end:      now.Add(-time.Second),
			expected: StatusEnded,
		},
		{
			name:     "live at exact end is ended",
			status:   StatusLive,
			start:    now.Add(-time.Hour),
			end:      now,
			expected: StatusEnded,
		},
		{
			name:     "ended is terminal",
			status:   StatusEnded,
			start:    now.Add(-2 * time.Hour),
			end:      now.Add(-time.Hour),
			expected: StatusEnded,
		},
		{
			name:     "cancelled is terminal even while clock says live",
			status:   StatusCancelled,
			start:    now.Add(-time.Hour),
			end:      now.Add(time.Hour),
			expected: StatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := baseAuction(tt.status, tt.start, tt.end)
			assert.Equal(t, tt.expected, EffectiveStatus(a, now))
		})
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("live auction reports time until end", func(t *testing.T) {
		a := baseAuction(StatusLive, now.Add(-time.Hour), now.Add(30*time.Minute))
		assert.Equal(t, 30*time.Minute, TimeRemaining(a, now))
	})

	t.Run("upcoming auction reports zero", func(t *testing.T) {
		a := baseAuction(StatusUpcoming, now.Add(time.Hour), now.Add(2*time.Hour))
		assert.Equal(t, time.Duration(0), TimeRemaining(a, now))
	})

	t.Run("ended auction reports zero", func(t *testing.T) {
		a := baseAuction(StatusLive, now.Add(-2*time.Hour), now.Add(-time.Hour))
		assert.Equal(t, time.Duration(0), TimeRemaining(a, now))
	})

	t.Run("cancelled auction reports zero", func(t *testing.T) {
		a := baseAuction(StatusCancelled, now.Add(-time.Hour), now.Add(time.Hour))
		assert.Equal(t, time.Duration(0), TimeRemaining(a, now))
	})
}

func TestCanBeCancelled(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("upcoming can be cancelled", func(t *testing.T) {
		a := baseAuction(StatusUpcoming, now.Add(time.Hour), now.Add(2*time.Hour))
		assert.True(t, a.CanBeCancelled(now))
	})

	t.Run("live can be cancelled", func(t *testing.T) {
		a := baseAuction(StatusLive, now.Add(-time.Hour), now.Add(time.Hour))
		assert.True(t, a.CanBeCancelled(now))
	})

	t.Run("stored live past end cannot be cancelled", func(t *testing.T) {
		a := baseAuction(StatusLive, now.Add(-2*time.Hour), now.Add(-time.Minute))
		assert.False(t, a.CanBeCancelled(now))
	})

	t.Run("cancelled cannot be cancelled again", func(t *testing.T) {
		a := baseAuction(StatusCancelled, now.Add(-time.Hour), now.Add(time.Hour))
		assert.False(t, a.CanBeCancelled(now))
	})
}
