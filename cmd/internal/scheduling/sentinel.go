package scheduling

import (
	"time"

	"amigella/cmd/internal/domain/entity"
)

// DailyCeiling is the number of scheduled appointments on one day at which
// the Sentinel declares the day overloaded. The count reaching the ceiling
// already trips it; only an explicit override goes past.
const DailyCeiling = 10

// Recovery block suggested on overloaded days.
const (
	recoveryStartHour = 19
	recoveryEndHour   = 21
)

// RecoveryBlock is an advisory rest window. It is never inserted into the
// calendar by the engine.
type RecoveryBlock struct {
	BeginsAt int64 `json:"begins_at"`
	EndsAt   int64 `json:"ends_at"`
}

type LoadReport struct {
	Count          int            `json:"count"`
	Ceiling        int            `json:"ceiling"`
	Overloaded     bool           `json:"overloaded"`
	Remaining      int            `json:"remaining"`
	Recommendation *RecoveryBlock `json:"recommendation,omitempty"`
}

// EvaluateLoad classifies a day's appointment count against the ceiling.
// day carries the user's timezone; the recovery recommendation is placed on
// that calendar day.
func EvaluateLoad(count, ceiling int, day time.Time) *LoadReport {
	report := &LoadReport{
		Count:      count,
		Ceiling:    ceiling,
		Overloaded: count >= ceiling,
		Remaining:  max(0, ceiling-count),
	}

	if report.Overloaded {
		y, m, d := day.Date()
		loc := day.Location()
		report.Recommendation = &RecoveryBlock{
			BeginsAt: time.Date(y, m, d, recoveryStartHour, 0, 0, 0, loc).UnixMilli(),
			EndsAt:   time.Date(y, m, d, recoveryEndHour, 0, 0, 0, loc).UnixMilli(),
		}
	}
	return report
}

// CountOnDay counts scheduled appointments starting within [dayStart, dayEnd).
func CountOnDay(appts []*entity.Appointment, dayStart, dayEnd int64) int {
	count := 0
	for _, appt := range appts {
		if appt.Status != entity.StatusScheduled {
			continue
		}
		if appt.BeginsAt >= dayStart && appt.BeginsAt < dayEnd {
			count++
		}
	}
	return count
}
