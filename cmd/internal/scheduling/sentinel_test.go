package scheduling

import (
	"testing"
	"time"

	"amigella/cmd/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLoadBelowCeiling(t *testing.T) {
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)

	report := EvaluateLoad(9, DailyCeiling, day)

	assert.Equal(t, 9, report.Count)
	assert.False(t, report.Overloaded)
	assert.Equal(t, 1, report.Remaining)
	assert.Nil(t, report.Recommendation)
}

func TestEvaluateLoadAtCeiling(t *testing.T) {
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)

	// The 10th appointment already trips the guard.
	report := EvaluateLoad(10, DailyCeiling, day)

	assert.True(t, report.Overloaded)
	assert.Zero(t, report.Remaining)
	require.NotNil(t, report.Recommendation)
	assert.Equal(t, time.Date(2026, 2, 24, 19, 0, 0, 0, time.UTC).UnixMilli(), report.Recommendation.BeginsAt)
	assert.Equal(t, time.Date(2026, 2, 24, 21, 0, 0, 0, time.UTC).UnixMilli(), report.Recommendation.EndsAt)
}

func TestEvaluateLoadPastCeilingRemainingFloorsAtZero(t *testing.T) {
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)

	report := EvaluateLoad(12, DailyCeiling, day)
	assert.True(t, report.Overloaded)
	assert.Zero(t, report.Remaining)
}

func TestEvaluateLoadRecommendationInUserTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Belgrade")
	require.NoError(t, err)
	day := time.Date(2026, 2, 24, 0, 0, 0, 0, loc)

	report := EvaluateLoad(10, DailyCeiling, day)
	require.NotNil(t, report.Recommendation)
	assert.Equal(t, time.Date(2026, 2, 24, 19, 0, 0, 0, loc).UnixMilli(), report.Recommendation.BeginsAt)
}

func TestCountOnDayCountsOnlyScheduledStarts(t *testing.T) {
	dayStart, dayEnd := DayWindow(time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC))

	cancelled := scheduled(3, millis(12, 0), millis(13, 0))
	cancelled.Status = entity.StatusCancelled

	// Starts the day before but spills into it: not counted.
	overnight := scheduled(4, millis(9, 0)-24*time.Hour.Milliseconds(), millis(1, 0))

	appts := []*entity.Appointment{
		scheduled(1, millis(9, 0), millis(10, 0)),
		scheduled(2, millis(22, 0), millis(23, 30)),
		cancelled,
		overnight,
	}

	assert.Equal(t, 2, CountOnDay(appts, dayStart, dayEnd))
}
