package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves ap to the target status and stamps the matching
// timestamp. It reports whether loyalty points are due.
func Transition(ap *models.Appointment, to Status, now time.Time) (awardPoints bool, err error) {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return false, err
	}

	ap.Status = string(to)

	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
		return true, nil
	}

	return false, nil
}
