package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewGetAvailability(repo domain.Repository, clock timezone.Clock) *GetAvailability {
	return &GetAvailability{repo: repo, clock: clock}
}

// Execute lists free start times for the salon, or for one professional
// when ProfessionalID is set.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	if _, err := uc.repo.GetSalonByID(ctx, in.SalonID); err != nil {
		return nil, err
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

	hours, err := uc.repo.GetBusinessHours(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	day := timezone.StartOfDay(in.Date.In(uc.clock.Location()))

	occupied, err := uc.repo.ListOccupiedTimes(
		ctx,
		in.SalonID,
		in.ProfessionalID,
		day,
		day.AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return domain.BuildSlots(hours, day, occupied, uc.clock.Now()), nil
}
