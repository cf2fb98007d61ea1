package scheduling

import (
	"testing"
	"time"

	"amigella/cmd/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeSlotsBetweenAppointments(t *testing.T) {
	rangeStart := millis(8, 0)
	rangeEnd := millis(18, 0)
	appts := []*entity.Appointment{
		scheduled(1, millis(9, 0), millis(10, 0)),
		scheduled(2, millis(12, 0), millis(13, 30)),
	}

	slots := FreeSlots(appts, rangeStart, rangeEnd, 60*time.Minute)
	require.Len(t, slots, 3)

	assert.Equal(t, Slot{BeginsAt: millis(8, 0), EndsAt: millis(9, 0)}, slots[0])
	assert.Equal(t, Slot{BeginsAt: millis(10, 0), EndsAt: millis(12, 0)}, slots[1])
	assert.Equal(t, Slot{BeginsAt: millis(13, 30), EndsAt: millis(18, 0)}, slots[2])
}

func TestFreeSlotsRespectsMinDuration(t *testing.T) {
	appts := []*entity.Appointment{
		scheduled(1, millis(9, 0), millis(10, 0)),
		scheduled(2, millis(10, 30), millis(17, 30)),
	}

	// The 30-minute gap disappears when an hour is required.
	slots := FreeSlots(appts, millis(9, 0), millis(18, 0), 60*time.Minute)
	require.Len(t, slots, 0)

	slots = FreeSlots(appts, millis(9, 0), millis(18, 0), 30*time.Minute)
	require.Len(t, slots, 2)
	assert.Equal(t, Slot{BeginsAt: millis(10, 0), EndsAt: millis(10, 30)}, slots[0])
	assert.Equal(t, Slot{BeginsAt: millis(17, 30), EndsAt: millis(18, 0)}, slots[1])
}

func TestFreeSlotsEmptyCalendarIsOneSlot(t *testing.T) {
	slots := FreeSlots(nil, millis(8, 0), millis(18, 0), 60*time.Minute)
	require.Len(t, slots, 1)
	assert.Equal(t, Slot{BeginsAt: millis(8, 0), EndsAt: millis(18, 0)}, slots[0])
}

func TestFreeSlotsIgnoresCancelled(t *testing.T) {
	cancelled := scheduled(1, millis(9, 0), millis(17, 0))
	cancelled.Status = entity.StatusCancelled

	slots := FreeSlots([]*entity.Appointment{cancelled}, millis(8, 0), millis(18, 0), 60*time.Minute)
	require.Len(t, slots, 1)
	assert.Equal(t, Slot{BeginsAt: millis(8, 0), EndsAt: millis(18, 0)}, slots[0])
}

func TestFreeSlotsOverlappingAppointments(t *testing.T) {
	appts := []*entity.Appointment{
		scheduled(1, millis(9, 0), millis(11, 0)),
		scheduled(2, millis(10, 0), millis(10, 30)), // nested in the first
	}

	slots := FreeSlots(appts, millis(8, 0), millis(12, 0), 30*time.Minute)
	require.Len(t, slots, 2)
	assert.Equal(t, Slot{BeginsAt: millis(8, 0), EndsAt: millis(9, 0)}, slots[0])
	assert.Equal(t, Slot{BeginsAt: millis(11, 0), EndsAt: millis(12, 0)}, slots[1])
}
