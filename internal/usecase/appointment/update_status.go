package appointment

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type UpdateStatusInput struct {
	Actor         Actor
	AppointmentID uint
	// Status accepts canonical and legacy spellings.
	Status string
}

type UpdateStatusResult struct {
	Appointment   *models.Appointment
	PointsAwarded int
}

type UpdateAppointmentStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

// Execute writes the new status and, on completion, credits the service's
// loyalty points to the client in the same transaction.
func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*UpdateStatusResult, error) {

	target, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var (
		from    domain.Status
		salonID uint
		awarded int
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// Who may change it
		// --------------------------------------------------
		if in.Actor.IsClient() {
			if err := in.Actor.canSee(ap); err != nil {
				return err
			}
			if target != domain.StatusCancelled {
				return httperr.ErrForbidden("forbidden")
			}
		} else if err := in.Actor.canManage(ap.SalonID); err != nil {
			return err
		}

		from = domain.Status(ap.Status)
		salonID = ap.SalonID

		// --------------------------------------------------
		// Transition
		// --------------------------------------------------
		award, err := domain.Transition(ap, target, uc.clock.Now())
		if err != nil {
			return err
		}

		if err := tx.ChangeStatus(ctx, ap, string(from)); err != nil {
			return err
		}

		// --------------------------------------------------
		// Loyalty points
		// --------------------------------------------------
		if !award || ap.ClientID == nil {
			return nil
		}

		service := ap.Service
		if service == nil {
			if service, err = tx.GetService(ctx, ap.SalonID, ap.ServiceID); err != nil {
				return err
			}
		}
		if service.LoyaltyPoints <= 0 {
			return nil
		}

		if err := tx.AddLoyaltyPoints(ctx, *ap.ClientID, service.LoyaltyPoints); err != nil {
			return err
		}
		awarded = service.LoyaltyPoints
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_status_changed",
		ActorID:  in.Actor.idPtr(),
		SalonID:  &salonID,
		Entity:   "appointment",
		EntityID: &in.AppointmentID,
		Details:  fmt.Sprintf("%s -> %s", from, target),
		Metadata: map[string]any{"points_awarded": awarded},
	})

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	return &UpdateStatusResult{Appointment: ap, PointsAwarded: awarded}, nil
}
