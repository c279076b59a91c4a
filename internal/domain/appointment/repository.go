package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ListFilter narrows appointment listings. SalonID or ClientID scope the
// query to the caller.
type ListFilter struct {
	SalonID        *uint
	ClientID       *uint
	ProfessionalID *uint
	Status         *Status
	From           *time.Time
	To             *time.Time
}

type Repository interface {
	// -------- Unit of work --------
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Salon --------
	GetSalonByID(
		ctx context.Context,
		id uint,
	) (*models.Salon, error)

	GetBusinessHours(
		ctx context.Context,
		salonID uint,
	) (*models.BusinessHours, error)

	// -------- Catalog --------
	GetService(
		ctx context.Context,
		salonID uint,
		serviceID uint,
	) (*models.Service, error)

	GetProfessional(
		ctx context.Context,
		salonID uint,
		professionalID uint,
	) (*models.Professional, error)

	// -------- Client --------
	GetClient(
		ctx context.Context,
		salonID uint,
		clientID uint,
	) (*models.Client, error)

	LockClient(
		ctx context.Context,
		salonID uint,
		clientID uint,
	) (*models.Client, error)

	GetOrCreateClient(
		ctx context.Context,
		salonID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	AddLoyaltyPoints(
		ctx context.Context,
		clientID uint,
		points int,
	) error

	// -------- Appointment (create / conflict) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	HasActiveFutureAppointment(
		ctx context.Context,
		salonID uint,
		clientID uint,
		now time.Time,
		excludeID uint,
	) (bool, error)

	HasProfessionalConflict(
		ctx context.Context,
		professionalID uint,
		at time.Time,
		excludeID uint,
	) (bool, error)

	// -------- Appointment (read / state change) --------
	GetAppointment(
		ctx context.Context,
		appointmentID uint,
	) (*models.Appointment, error)

	ListAppointments(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ChangeStatus fails with invalid_state when the stored status is no
	// longer from.
	ChangeStatus(
		ctx context.Context,
		ap *models.Appointment,
		from string,
	) error

	DeleteAppointment(
		ctx context.Context,
		appointmentID uint,
	) error

	// -------- Availability --------
	ListOccupiedTimes(
		ctx context.Context,
		salonID uint,
		professionalID *uint,
		start time.Time,
		end time.Time,
	) ([]time.Time, error)

	// -------- Maintenance --------
	ListUpcomingWithoutReminder(
		ctx context.Context,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	MarkReminderSent(
		ctx context.Context,
		appointmentID uint,
		at time.Time,
	) error

	MarkNoShowBefore(
		ctx context.Context,
		cutoff time.Time,
	) (int64, error)
}
