package scheduling

import (
	"time"

	"amigella/cmd/internal/domain/entity"
)

// Slot is a contiguous free gap between scheduled appointments.
type Slot struct {
	BeginsAt int64 `json:"begins_at"`
	EndsAt   int64 `json:"ends_at"`
}

// FreeSlots computes the gaps of at least minDuration within
// [rangeStart, rangeEnd). The range boundaries count as free edges. Input
// must be sorted by BeginsAt ascending; cancelled and completed
// appointments do not block time.
func FreeSlots(appts []*entity.Appointment, rangeStart, rangeEnd int64, minDuration time.Duration) []Slot {
	minMs := minDuration.Milliseconds()
	cursor := rangeStart

	slots := make([]Slot, 0)
	for _, appt := range appts {
		if appt.Status != entity.StatusScheduled {
			continue
		}
		if appt.BeginsAt >= rangeEnd {
			break
		}
		if appt.BeginsAt-cursor >= minMs {
			slots = append(slots, Slot{BeginsAt: cursor, EndsAt: appt.BeginsAt})
		}
		if appt.EndsAt > cursor {
			cursor = appt.EndsAt
		}
	}

	if cursor < rangeEnd && rangeEnd-cursor >= minMs {
		slots = append(slots, Slot{BeginsAt: cursor, EndsAt: rangeEnd})
	}
	return slots
}
