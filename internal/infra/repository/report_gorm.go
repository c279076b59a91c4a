package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/report"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const statusCompleted = "completed"

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

// --------------------------------------------------
// Counters
// --------------------------------------------------

func (r *ReportGormRepository) CountClients(
	ctx context.Context,
	salonID uint,
	createdSince *time.Time,
) (int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("salon_id = ?", salonID)
	if createdSince != nil {
		q = q.Where("created_at >= ?", createdSince.UTC())
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *ReportGormRepository) CountServices(ctx context.Context, salonID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("salon_id = ?", salonID).
		Count(&n).Error
	return n, err
}

func (r *ReportGormRepository) CountAppointments(
	ctx context.Context,
	salonID uint,
	statuses []string,
	p report.Period,
) (int64, error) {

	q := inPeriod(r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("salon_id = ?", salonID), p)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *ReportGormRepository) SumRevenue(
	ctx context.Context,
	salonID uint,
	p report.Period,
) (decimal.Decimal, error) {

	var total decimal.Decimal
	err := inPeriod(r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("COALESCE(SUM(price), 0)").
		Where("salon_id = ? AND status = ?", salonID, statusCompleted), p).
		Row().
		Scan(&total)
	return total, err
}

// --------------------------------------------------
// Breakdowns
// --------------------------------------------------

func (r *ReportGormRepository) StatusCounts(
	ctx context.Context,
	salonID uint,
) ([]report.StatusCount, error) {

	var rows []report.StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Where("salon_id = ?", salonID).
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportGormRepository) PopularServices(
	ctx context.Context,
	salonID uint,
	limit int,
) ([]report.PopularService, error) {

	var rows []report.PopularService
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select(`appointments.service_id AS service_id,
			services.name AS name,
			COUNT(appointments.id) AS total,
			COALESCE(SUM(CASE WHEN appointments.status = ? THEN appointments.price ELSE 0 END), 0) AS revenue`,
			statusCompleted,
		).
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.salon_id = ?", salonID).
		Group("appointments.service_id, services.name").
		Order("total DESC, services.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ReportGormRepository) ListCompleted(
	ctx context.Context,
	salonID uint,
	p report.Period,
) ([]report.Completed, error) {

	var rows []struct {
		AppointmentDatetime time.Time
		Price               decimal.Decimal
	}
	err := inPeriod(r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("appointment_datetime, price").
		Where("salon_id = ? AND status = ?", salonID, statusCompleted), p).
		Order("appointment_datetime ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]report.Completed, len(rows))
	for i, row := range rows {
		out[i] = report.Completed{At: row.AppointmentDatetime, Price: row.Price}
	}
	return out, nil
}

func (r *ReportGormRepository) ClientsCreatedSince(
	ctx context.Context,
	salonID uint,
	since time.Time,
) ([]time.Time, error) {

	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("salon_id = ? AND created_at >= ?", salonID, since.UTC()).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	return times, err
}

func (r *ReportGormRepository) Performance(
	ctx context.Context,
	salonID uint,
) ([]report.ProfessionalPerformance, error) {

	var rows []report.ProfessionalPerformance
	err := r.db.WithContext(ctx).
		Table("professionals").
		Select(`professionals.id AS professional_id,
			professionals.name AS name,
			COUNT(appointments.id) AS total,
			COALESCE(SUM(CASE WHEN appointments.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN appointments.status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN appointments.status = 'no_show' THEN 1 ELSE 0 END), 0) AS no_show,
			COALESCE(SUM(CASE WHEN appointments.status = 'completed' THEN appointments.price ELSE 0 END), 0) AS revenue`).
		Joins("LEFT JOIN appointments ON appointments.professional_id = professionals.id").
		Where("professionals.salon_id = ?", salonID).
		Group("professionals.id, professionals.name").
		Order("revenue DESC, professionals.name ASC").
		Scan(&rows).Error
	return rows, err
}

func inPeriod(q *gorm.DB, p report.Period) *gorm.DB {
	if p.From != nil {
		q = q.Where("appointment_datetime >= ?", p.From.UTC())
	}
	if p.To != nil {
		q = q.Where("appointment_datetime < ?", p.To.UTC())
	}
	return q
}

var _ report.Repository = (*ReportGormRepository)(nil)
