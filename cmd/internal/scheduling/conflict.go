package scheduling

import (
	"time"

	"amigella/cmd/internal/domain/entity"
)

// DefaultBuffer is the breathing room required around existing appointments.
const DefaultBuffer = 15 * time.Minute

// FindConflicts returns every scheduled appointment whose interval, widened
// by buffer on both sides, overlaps the candidate interval. The buffer is
// applied to the existing appointment only, so two candidates checked
// against each other are not penalized twice.
func FindConflicts(existing []*entity.Appointment, beginsAt, endsAt int64, buffer time.Duration) []*entity.Appointment {
	buf := buffer.Milliseconds()

	conflicts := make([]*entity.Appointment, 0)
	for _, appt := range existing {
		if appt.Status != entity.StatusScheduled {
			continue
		}
		if appt.BeginsAt-buf < endsAt && appt.EndsAt+buf > beginsAt {
			conflicts = append(conflicts, appt)
		}
	}
	return conflicts
}
