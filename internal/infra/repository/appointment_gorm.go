package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Unit of work
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Salon
// --------------------------------------------------

func (r *AppointmentGormRepository) GetSalonByID(
	ctx context.Context,
	id uint,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, id).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("salon_not_found")
		}
		return nil, err
	}
	return &salon, nil
}

func (r *AppointmentGormRepository) GetBusinessHours(
	ctx context.Context,
	salonID uint,
) (*models.BusinessHours, error) {

	var bh models.BusinessHours
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		First(&bh).Error

	if httperr.IsNotFound(err) {
		return models.DefaultBusinessHours(salonID), nil
	}
	if err != nil {
		return nil, err
	}
	return &bh, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	salonID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", serviceID, salonID).
		First(&service).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("service_not_found")
		}
		return nil, err
	}
	return &service, nil
}

func (r *AppointmentGormRepository) GetProfessional(
	ctx context.Context,
	salonID uint,
	professionalID uint,
) (*models.Professional, error) {

	var professional models.Professional
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", professionalID, salonID).
		First(&professional).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("professional_not_found")
		}
		return nil, err
	}
	return &professional, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	salonID uint,
	clientID uint,
) (*models.Client, error) {
	return r.findClient(r.db.WithContext(ctx), salonID, clientID)
}

// LockClient reads the client with SELECT ... FOR UPDATE so concurrent
// bookings for the same client serialize. SQLite has no row locks and
// already serializes writers.
func (r *AppointmentGormRepository) LockClient(
	ctx context.Context,
	salonID uint,
	clientID uint,
) (*models.Client, error) {

	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findClient(q, salonID, clientID)
}

func (r *AppointmentGormRepository) findClient(
	q *gorm.DB,
	salonID uint,
	clientID uint,
) (*models.Client, error) {

	var client models.Client
	if err := q.
		Where("id = ? AND salon_id = ?", clientID, salonID).
		First(&client).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("client_not_found")
		}
		return nil, err
	}
	return &client, nil
}

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	salonID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	if phone == "" {
		return nil, httperr.ErrValidation("invalid_phone")
	}

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND phone = ?", salonID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}
	if !httperr.IsNotFound(err) {
		return nil, err
	}

	client = models.Client{
		SalonID: salonID,
		Name:    name,
		Phone:   &phone,
	}
	if email != "" {
		client.Email = &email
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *AppointmentGormRepository) AddLoyaltyPoints(
	ctx context.Context,
	clientID uint,
	points int,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("client_not_found")
	}
	return nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	ap.AppointmentDatetime = ap.AppointmentDatetime.UTC()

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(ap).Error
	return translateSlotError(err)
}

func (r *AppointmentGormRepository) HasActiveFutureAppointment(
	ctx context.Context,
	salonID uint,
	clientID uint,
	now time.Time,
	excludeID uint,
) (bool, error) {

	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"client_id = ? AND salon_id = ? AND status IN ? AND appointment_datetime > ?",
			clientID, salonID, domain.ActiveStatuses, now.UTC(),
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) HasProfessionalConflict(
	ctx context.Context,
	professionalID uint,
	at time.Time,
	excludeID uint,
) (bool, error) {

	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"professional_id = ? AND appointment_datetime = ? AND status IN ?",
			professionalID, at.UTC(), domain.ActiveStatuses,
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Appointment (read / state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.withRelations(r.db.WithContext(ctx)).
		First(&ap, appointmentID).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("appointment_not_found")
		}
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.withRelations(r.db.WithContext(ctx))

	if f.SalonID != nil {
		q = q.Where("salon_id = ?", *f.SalonID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.ProfessionalID != nil {
		q = q.Where("professional_id = ?", *f.ProfessionalID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.From != nil {
		q = q.Where("appointment_datetime >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("appointment_datetime < ?", f.To.UTC())
	}

	var apps []models.Appointment
	if err := q.Order("appointment_datetime ASC").Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// UpdateAppointment writes the editable columns while the row is still
// active. A row closed in the meantime answers invalid_state.
func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	ap.AppointmentDatetime = ap.AppointmentDatetime.UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", ap.ID, domain.ActiveStatuses).
		Updates(map[string]any{
			"service_id":           ap.ServiceID,
			"professional_id":      ap.ProfessionalID,
			"appointment_datetime": ap.AppointmentDatetime,
			"price":                ap.Price,
			"notes":                ap.Notes,
		})
	if res.Error != nil {
		return translateSlotError(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrConflict("invalid_state")
	}
	return nil
}

// ChangeStatus writes ap's status only if the row still holds from, so of
// two concurrent transitions exactly one wins.
func (r *AppointmentGormRepository) ChangeStatus(
	ctx context.Context,
	ap *models.Appointment,
	from string,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, from).
		Updates(map[string]any{
			"status":       ap.Status,
			"cancelled_at": ap.CancelledAt,
			"completed_at": ap.CompletedAt,
		})
	if res.Error != nil {
		return translateSlotError(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrConflict("invalid_state")
	}
	return nil
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	appointmentID uint,
) error {

	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, appointmentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("appointment_not_found")
	}
	return nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) ListOccupiedTimes(
	ctx context.Context,
	salonID uint,
	professionalID *uint,
	start time.Time,
	end time.Time,
) ([]time.Time, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"salon_id = ? AND status IN ? AND appointment_datetime >= ? AND appointment_datetime < ?",
			salonID, domain.ActiveStatuses, start.UTC(), end.UTC(),
		)
	if professionalID != nil {
		q = q.Where("professional_id = ?", *professionalID)
	}

	var times []time.Time
	if err := q.
		Order("appointment_datetime ASC").
		Pluck("appointment_datetime", &times).Error; err != nil {
		return nil, err
	}

	return times, nil
}

// --------------------------------------------------
// Maintenance
// --------------------------------------------------

func (r *AppointmentGormRepository) ListUpcomingWithoutReminder(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.withRelations(r.db.WithContext(ctx)).
		Where(
			"status IN ? AND reminder_sent_at IS NULL AND appointment_datetime >= ? AND appointment_datetime <= ?",
			domain.ActiveStatuses, from.UTC(), to.UTC(),
		).
		Order("appointment_datetime ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) MarkReminderSent(
	ctx context.Context,
	appointmentID uint,
	at time.Time,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Update("reminder_sent_at", at.UTC()).Error
}

func (r *AppointmentGormRepository) MarkNoShowBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"status = ? AND appointment_datetime < ?",
			string(domain.StatusScheduled), cutoff.UTC(),
		).
		Update("status", string(domain.StatusNoShow))

	return res.RowsAffected, res.Error
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (r *AppointmentGormRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Client").
		Preload("Service").
		Preload("Professional")
}

func translateSlotError(err error) error {
	if httperr.IsUniqueViolation(err, "ux_appointments_professional_slot") {
		return httperr.ErrConflict("time_conflict")
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
