package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domainap "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/report"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const (
	DefaultPopularLimit = 5
	DefaultDays         = 30
	DefaultMonths       = 6

	maxDays   = 366
	maxMonths = 24
	maxLimit  = 50
)

// Reports computes salon aggregates on every call. Nothing is cached;
// empty data yields zero values and empty series, never nil.
type Reports struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewReports(repo domain.Repository, clock timezone.Clock) *Reports {
	return &Reports{repo: repo, clock: clock}
}

func (r *Reports) Dashboard(ctx context.Context, salonID uint) (*domain.Dashboard, error) {
	now := r.clock.Now()
	dayStart := timezone.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := timezone.StartOfMonth(now)

	var (
		d   domain.Dashboard
		err error
	)

	if d.TotalClients, err = r.repo.CountClients(ctx, salonID, nil); err != nil {
		return nil, err
	}
	if d.TotalServices, err = r.repo.CountServices(ctx, salonID); err != nil {
		return nil, err
	}
	if d.ActiveAppointments, err = r.repo.CountAppointments(
		ctx, salonID, domainap.ActiveStatuses, domain.Period{},
	); err != nil {
		return nil, err
	}
	if d.Revenue, err = r.repo.SumRevenue(ctx, salonID, domain.Period{}); err != nil {
		return nil, err
	}
	if d.TodayAppointments, err = r.repo.CountAppointments(
		ctx, salonID, domainap.ActiveStatuses,
		domain.Period{From: &dayStart, To: &dayEnd},
	); err != nil {
		return nil, err
	}
	if d.NewClientsMonth, err = r.repo.CountClients(ctx, salonID, &monthStart); err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *Reports) StatusBreakdown(ctx context.Context, salonID uint) ([]domain.StatusCount, error) {
	rows, err := r.repo.StatusCounts(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.StatusCount{}
	}
	return rows, nil
}

func (r *Reports) PopularServices(
	ctx context.Context,
	salonID uint,
	limit int,
) ([]domain.PopularService, error) {

	rows, err := r.repo.PopularServices(ctx, salonID, clamp(limit, DefaultPopularLimit, maxLimit))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.PopularService{}
	}
	return rows, nil
}

// DailyRevenue returns one point per salon-local day, oldest first,
// ending today.
func (r *Reports) DailyRevenue(ctx context.Context, salonID uint, days int) ([]domain.Point, error) {
	days = clamp(days, DefaultDays, maxDays)

	today := timezone.StartOfDay(r.clock.Now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	rows, err := r.repo.ListCompleted(ctx, salonID, domain.Period{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	series, index := daySeries(from, days)
	for _, c := range rows {
		if i, ok := index[dayKey(c.At, today.Location())]; ok {
			series[i].Count++
			series[i].Revenue = series[i].Revenue.Add(c.Price)
		}
	}
	return series, nil
}

// MonthlyRevenue returns one point per month, oldest first, ending with
// the current month.
func (r *Reports) MonthlyRevenue(ctx context.Context, salonID uint, months int) ([]domain.Point, error) {
	months = clamp(months, DefaultMonths, maxMonths)

	current := timezone.StartOfMonth(r.clock.Now())
	from := current.AddDate(0, -(months - 1), 0)
	to := current.AddDate(0, 1, 0)

	rows, err := r.repo.ListCompleted(ctx, salonID, domain.Period{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	series := make([]domain.Point, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := from.AddDate(0, i, 0).Format("2006-01")
		series[i] = domain.Point{Period: key, Revenue: decimal.Zero}
		index[key] = i
	}

	loc := current.Location()
	for _, c := range rows {
		if i, ok := index[c.At.In(loc).Format("2006-01")]; ok {
			series[i].Count++
			series[i].Revenue = series[i].Revenue.Add(c.Price)
		}
	}
	return series, nil
}

// NewClients counts registrations per salon-local day.
func (r *Reports) NewClients(ctx context.Context, salonID uint, days int) ([]domain.Point, error) {
	days = clamp(days, DefaultDays, maxDays)

	today := timezone.StartOfDay(r.clock.Now())
	from := today.AddDate(0, 0, -(days - 1))

	created, err := r.repo.ClientsCreatedSince(ctx, salonID, from)
	if err != nil {
		return nil, err
	}

	series, index := daySeries(from, days)
	for _, at := range created {
		if i, ok := index[dayKey(at, today.Location())]; ok {
			series[i].Count++
		}
	}
	return series, nil
}

func (r *Reports) Performance(ctx context.Context, salonID uint) ([]domain.ProfessionalPerformance, error) {
	rows, err := r.repo.Performance(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.ProfessionalPerformance{}
	}
	return rows, nil
}

func daySeries(from time.Time, days int) ([]domain.Point, map[string]int) {
	series := make([]domain.Point, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := from.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = domain.Point{Period: key, Revenue: decimal.Zero}
		index[key] = i
	}
	return series, index
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
