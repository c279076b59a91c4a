package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

type DeleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:  repo,
		audit: audit,
	}
}

// Execute removes the row for good.
func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) error {

	if actor.IsClient() {
		return httperr.ErrForbidden("forbidden")
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := actor.canManage(ap.SalonID); err != nil {
		return err
	}

	if err := uc.repo.DeleteAppointment(ctx, appointmentID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_deleted",
		ActorID:  actor.idPtr(),
		SalonID:  &ap.SalonID,
		Entity:   "appointment",
		EntityID: &appointmentID,
	})

	return nil
}
