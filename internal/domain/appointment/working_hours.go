package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// IsWithinBusinessHours checks that [start, end] fits the salon's opening
// hours for start's weekday.
func IsWithinBusinessHours(
	hours *models.BusinessHours,
	start time.Time,
	end time.Time,
) bool {

	open, close := hours.Day(start.Weekday())
	if open == nil || close == nil {
		return false
	}

	workStart, err := timezone.AtClock(start, *open)
	if err != nil {
		return false
	}
	workEnd, err := timezone.AtClock(start, *close)
	if err != nil {
		return false
	}

	return !start.Before(workStart) && !end.After(workEnd)
}
