package appointment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type UpdateAppointmentInput struct {
	Actor         Actor
	AppointmentID uint

	Datetime          *time.Time
	ServiceID         *uint
	ProfessionalID    *uint
	ClearProfessional bool
	Price             *decimal.Decimal
	Notes             *string
}

type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

// Execute edits an active appointment. The price snapshot only changes when
// a new price is sent explicitly.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	if in.Actor.IsClient() {
		return nil, httperr.ErrForbidden("forbidden")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, httperr.ErrValidation("invalid_request")
	}

	now := uc.clock.Now()

	var salonID uint
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if err := in.Actor.canManage(ap.SalonID); err != nil {
			return err
		}
		if err := domain.CanEdit(domain.Status(ap.Status)); err != nil {
			return err
		}
		salonID = ap.SalonID

		if in.ServiceID != nil {
			if _, err := tx.GetService(ctx, ap.SalonID, *in.ServiceID); err != nil {
				return err
			}
			ap.ServiceID = *in.ServiceID
		}

		switch {
		case in.ClearProfessional:
			ap.ProfessionalID = nil
		case in.ProfessionalID != nil:
			if _, err := tx.GetProfessional(ctx, ap.SalonID, *in.ProfessionalID); err != nil {
				return err
			}
			ap.ProfessionalID = in.ProfessionalID
		}

		if in.Datetime != nil {
			ap.AppointmentDatetime = *in.Datetime
		}
		if in.Price != nil {
			ap.Price = *in.Price
		}
		if in.Notes != nil {
			ap.Notes = *in.Notes
		}

		if err := assertBookable(ctx, tx, now, ap); err != nil {
			return err
		}

		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_updated",
		ActorID:  in.Actor.idPtr(),
		SalonID:  &salonID,
		Entity:   "appointment",
		EntityID: &in.AppointmentID,
	})

	return uc.repo.GetAppointment(ctx, in.AppointmentID)
}
