package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDay(t *testing.T, s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d.UTC()
}

func TestNewDateRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		dr, err := NewDateRange(mustDay(t, "2024-03-01"), mustDay(t, "2024-03-05"))
		require.NoError(t, err)
		assert.Equal(t, mustDay(t, "2024-03-01"), dr.Start())
		assert.Equal(t, mustDay(t, "2024-03-05"), dr.End())
		assert.Equal(t, 5, dr.Days())
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := NewDateRange(mustDay(t, "2024-03-05"), mustDay(t, "2024-03-01"))
		assert.Error(t, err)
	})

	t.Run("bounds normalized to midnight UTC", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
		dr, err := NewDateRange(start, start)
		require.NoError(t, err)
		assert.Equal(t, mustDay(t, "2024-03-01"), dr.Start())
	})
}

func TestSingleDay(t *testing.T) {
	dr := SingleDay(mustDay(t, "2024-07-15"))
	assert.Equal(t, dr.Start(), dr.End())
	assert.Equal(t, 1, dr.Days())
}

func TestDateRange_Contains(t *testing.T) {
	dr, err := NewDateRange(mustDay(t, "2024-03-01"), mustDay(t, "2024-03-05"))
	require.NoError(t, err)

	tests := []struct {
		day  string
		want bool
	}{
		{"2024-02-29", false},
		{"2024-03-01", true},
		{"2024-03-03", true},
		{"2024-03-05", true},
		{"2024-03-06", false},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, dr.Contains(mustDay(t, tt.day)))
		})
	}
}

func TestDateRange_ContainsInstantWithinLastDay(t *testing.T) {
	dr, err := NewDateRange(mustDay(t, "2024-03-01"), mustDay(t, "2024-03-01"))
	require.NoError(t, err)

	lateInstant := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.True(t, dr.Contains(lateInstant))
}

func TestDateRange_String(t *testing.T) {
	dr, err := NewDateRange(mustDay(t, "2024-03-01"), mustDay(t, "2024-03-05"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01..2024-03-05", dr.String())
}
