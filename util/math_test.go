package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMathHelpers(t *testing.T) {
	t.Run("RoundUp", func(t *testing.T) {
		assert.Equal(t, 1.35, RoundUp(1.341, 2))
		assert.Equal(t, 2.0, RoundUp(1.01, 0))
	})
	t.Run("Average", func(t *testing.T) {
		assert.Equal(t, 0.0, Average(nil))
		assert.Equal(t, 2.0, Average([]float64{1, 2, 3}))
	})
	t.Run("Mean", func(t *testing.T) {
		assert.Equal(t, 0.0, Mean(nil))
		assert.InDelta(t, 1.5, Mean([]float64{1, 2}), 1e-9)
	})
	t.Run("StringInSlice", func(t *testing.T) {
		assert.True(t, StringInSlice("b", []string{"a", "b"}))
		assert.False(t, StringInSlice("c", []string{"a", "b"}))
	})
}

func TestTimeRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("DurationAndValidity", func(t *testing.T) {
		tr := TimeRange{StartAt: start, EndAt: start.Add(time.Hour)}
		assert.Equal(t, time.Hour, tr.Duration())
		assert.True(t, tr.IsValid())
		assert.False(t, tr.IsZero())

		inverted := TimeRange{StartAt: start.Add(time.Hour), EndAt: start}
		assert.False(t, inverted.IsValid())
	})
	t.Run("CheckIsInclusive", func(t *testing.T) {
		tr := TimeRange{StartAt: start, EndAt: start.Add(time.Hour)}
		assert.True(t, tr.Check(start))
		assert.True(t, tr.Check(start.Add(time.Hour)))
		assert.True(t, tr.Check(start.Add(30*time.Minute)))
		assert.False(t, tr.Check(start.Add(2*time.Hour)))
	})
	t.Run("GetTimeRangeWithZeroStart", func(t *testing.T) {
		tr := GetTimeRange(time.Time{}, time.Hour)
		assert.Equal(t, time.Hour, tr.Duration())
		assert.True(t, tr.EndAt.After(tr.StartAt))
	})
	t.Run("GetTimeRangeWithExplicitStart", func(t *testing.T) {
		tr := GetTimeRange(start, time.Hour)
		assert.Equal(t, start, tr.StartAt)
		assert.Equal(t, start.Add(time.Hour), tr.EndAt)
	})
}
