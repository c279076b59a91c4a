package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreatePublicAppointmentInput struct {
	SalonID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceID      uint
	ProfessionalID *uint

	Datetime time.Time
	Notes    string
}

// ======================================================
// USE CASE
// ======================================================

// CreatePublicAppointment books from the salon's public page. The client
// is found by phone or created without a password.
type CreatePublicAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
}

func NewCreatePublicAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *CreatePublicAppointment {
	return &CreatePublicAppointment{
		repo:  repo,
		audit: audit,
		clock: clock,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreatePublicAppointment) Execute(
	ctx context.Context,
	in CreatePublicAppointmentInput,
) (*models.Appointment, error) {

	// clients are matched by phone, an empty one would merge strangers
	if in.ClientPhone == "" {
		return nil, httperr.ErrValidation("invalid_phone")
	}

	// --------------------------------------------------
	// 1. Salon
	// --------------------------------------------------
	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	if !salon.Active || salon.IsAdmin {
		return nil, httperr.ErrNotFound("salon_not_found")
	}

	// --------------------------------------------------
	// 2. Service / professional
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, in.SalonID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, httperr.ErrNotFound("service_not_found")
	}

	if in.ProfessionalID != nil {
		p, err := uc.repo.GetProfessional(ctx, in.SalonID, *in.ProfessionalID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, httperr.ErrNotFound("professional_not_found")
		}
	}

	// --------------------------------------------------
	// 3. Date / business hours
	// --------------------------------------------------
	now := uc.clock.Now()
	start := in.Datetime.In(uc.clock.Location())
	if !start.After(now) {
		return nil, httperr.ErrValidation("in_the_past")
	}

	hours, err := uc.repo.GetBusinessHours(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)
	if !domain.IsWithinBusinessHours(hours, start, end) {
		return nil, httperr.ErrValidation("outside_business_hours")
	}

	// --------------------------------------------------
	// 4. Client (get or create)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.SalonID,
		strings.TrimSpace(in.ClientName),
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Checks + insert, price from the catalog
	// --------------------------------------------------
	ap := &models.Appointment{
		SalonID:             in.SalonID,
		ClientID:            &client.ID,
		ServiceID:           service.ID,
		ProfessionalID:      in.ProfessionalID,
		AppointmentDatetime: start,
		Price:               service.Price,
		Status:              string(domain.InitialStatus()),
		Notes:               in.Notes,
	}

	if err := book(ctx, uc.repo, now, ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_created",
		SalonID:  &ap.SalonID,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Details:  fmt.Sprintf("Agendamento público de %s (%s)", client.Name, service.Name),
		Metadata: map[string]any{"source": "public"},
	})

	return uc.repo.GetAppointment(ctx, ap.ID)
}
