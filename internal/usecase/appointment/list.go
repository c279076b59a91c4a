package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type ListAppointmentsInput struct {
	Actor Actor

	// Date limits the listing to one salon-local day.
	Date           *time.Time
	Status         string
	ProfessionalID *uint
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute scopes the listing to the caller: clients get their own rows,
// owners and admins the rows of their salon.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]models.Appointment, error) {

	f := domain.ListFilter{ProfessionalID: in.ProfessionalID}

	if in.Actor.IsClient() {
		f.ClientID = &in.Actor.UserID
	} else {
		f.SalonID = &in.Actor.SalonID
	}

	if in.Status != "" {
		st, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}

	if in.Date != nil {
		from := timezone.StartOfDay(*in.Date)
		to := from.AddDate(0, 0, 1)
		f.From, f.To = &from, &to
	}

	return uc.repo.ListAppointments(ctx, f)
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := actor.canSee(ap); err != nil {
		return nil, err
	}
	return ap, nil
}
