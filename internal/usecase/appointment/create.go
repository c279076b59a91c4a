package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor Actor

	SalonID        uint
	ClientID       uint
	ServiceID      uint
	ProfessionalID *uint

	Datetime time.Time
	// Price overrides the service price when set.
	Price *decimal.Decimal
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Authorization
	// --------------------------------------------------
	if in.SalonID == 0 && !in.Actor.IsAdmin() {
		in.SalonID = in.Actor.SalonID
	}
	if in.SalonID == 0 {
		return nil, httperr.ErrValidation("invalid_request")
	}

	if in.Actor.IsClient() {
		if in.SalonID != in.Actor.SalonID {
			return nil, httperr.ErrForbidden("forbidden_salon")
		}
		in.ClientID = in.Actor.UserID
	} else if err := in.Actor.canManage(in.SalonID); err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetSalonByID(ctx, in.SalonID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Referenced entities
	// --------------------------------------------------
	client, err := uc.repo.GetClient(ctx, in.SalonID, in.ClientID)
	if err != nil {
		return nil, err
	}

	service, err := uc.repo.GetService(ctx, in.SalonID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	if in.ProfessionalID != nil {
		if _, err := uc.repo.GetProfessional(ctx, in.SalonID, *in.ProfessionalID); err != nil {
			return nil, err
		}
	}

	// clients cannot book the past; owners may record past visits
	if in.Actor.IsClient() && !in.Datetime.After(uc.clock.Now()) {
		return nil, httperr.ErrValidation("in_the_past")
	}

	price := service.Price
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, httperr.ErrValidation("invalid_request")
		}
		price = *in.Price
	}

	// --------------------------------------------------
	// 3. Checks + insert
	// --------------------------------------------------
	ap := &models.Appointment{
		SalonID:             in.SalonID,
		ClientID:            &client.ID,
		ServiceID:           service.ID,
		ProfessionalID:      in.ProfessionalID,
		AppointmentDatetime: in.Datetime,
		Price:               price,
		Status:              string(domain.InitialStatus()),
		Notes:               in.Notes,
	}

	if err := book(ctx, uc.repo, uc.clock.Now(), ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_created",
		ActorID:  in.Actor.idPtr(),
		SalonID:  &ap.SalonID,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Details: fmt.Sprintf(
			"Agendamento de %s para %s",
			service.Name, ap.AppointmentDatetime.In(uc.clock.Location()).Format("02/01/2006 15:04"),
		),
	})

	return uc.repo.GetAppointment(ctx, ap.ID)
}

// book runs the conflict checks and the insert in one transaction. The
// client row is locked first so two bookings for the same client cannot
// both see "no active appointment". The professional slot is also guarded
// by a partial unique index; the insert maps its violation to time_conflict.
func book(
	ctx context.Context,
	repo domain.Repository,
	now time.Time,
	ap *models.Appointment,
) error {
	return repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := assertBookable(ctx, tx, now, ap); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, ap)
	})
}

// assertBookable fails closed: a query error is returned, never treated
// as "no conflict".
func assertBookable(
	ctx context.Context,
	tx domain.Repository,
	now time.Time,
	ap *models.Appointment,
) error {

	if ap.ClientID != nil {
		if _, err := tx.LockClient(ctx, ap.SalonID, *ap.ClientID); err != nil {
			return err
		}

		busy, err := tx.HasActiveFutureAppointment(ctx, ap.SalonID, *ap.ClientID, now, ap.ID)
		if err != nil {
			return fmt.Errorf("active appointment check: %w", err)
		}
		if busy {
			return httperr.ErrConflict("active_appointment_exists")
		}
	}

	if ap.ProfessionalID != nil {
		taken, err := tx.HasProfessionalConflict(ctx, *ap.ProfessionalID, ap.AppointmentDatetime, ap.ID)
		if err != nil {
			return fmt.Errorf("professional conflict check: %w", err)
		}
		if taken {
			return httperr.ErrConflict("time_conflict")
		}
	}

	return nil
}
