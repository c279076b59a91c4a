package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// SlotStep is the granularity of bookable start times.
const SlotStep = 30 * time.Minute

type AvailabilityInput struct {
	SalonID        uint
	ProfessionalID *uint
	Date           time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BuildSlots lists SlotStep-sized slots between open and close on day,
// skipping instants in occupied and anything not after now.
func BuildSlots(
	hours *models.BusinessHours,
	day time.Time,
	occupied []time.Time,
	now time.Time,
) []TimeSlot {

	slots := []TimeSlot{}

	open, close := hours.Day(day.Weekday())
	if open == nil || close == nil {
		return slots
	}

	dayStart, err := timezone.AtClock(day, *open)
	if err != nil {
		return slots
	}
	dayEnd, err := timezone.AtClock(day, *close)
	if err != nil {
		return slots
	}

	taken := make(map[int64]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t.Unix()] = struct{}{}
	}

	for cur := dayStart; !cur.Add(SlotStep).After(dayEnd); cur = cur.Add(SlotStep) {
		if !cur.After(now) {
			continue
		}
		if _, busy := taken[cur.Unix()]; busy {
			continue
		}
		slots = append(slots, TimeSlot{
			Start: cur.Format("15:04"),
			End:   cur.Add(SlotStep).Format("15:04"),
		})
	}

	return slots
}
