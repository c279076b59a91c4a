package appointment

import (
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Actor is the authenticated caller as seen by the use cases.
type Actor struct {
	UserID  uint
	Role    string
	SalonID uint
}

func (a Actor) IsAdmin() bool  { return a.Role == models.RoleAdmin }
func (a Actor) IsClient() bool { return a.Role == models.RoleClient }

// canManage reports whether the actor may manage appointments of salonID.
func (a Actor) canManage(salonID uint) error {
	if a.IsAdmin() {
		return nil
	}
	if a.Role == models.RoleOwner && a.SalonID == salonID {
		return nil
	}
	return httperr.ErrForbidden("forbidden_salon")
}

// canSee adds the client's own appointments on top of canManage.
func (a Actor) canSee(ap *models.Appointment) error {
	if a.IsClient() {
		if ap.ClientID != nil && *ap.ClientID == a.UserID {
			return nil
		}
		return httperr.ErrForbidden("forbidden")
	}
	return a.canManage(ap.SalonID)
}

func (a Actor) idPtr() *uint {
	id := a.UserID
	return &id
}
