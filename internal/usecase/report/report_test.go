package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/report"
)

var testNow = time.Date(2025, 9, 24, 10, 0, 0, 0, time.UTC)

func newReports(db *gorm.DB) *report.Reports {
	return report.NewReports(
		repository.NewReportGormRepository(db),
		timezone.FixedClock{At: testNow},
	)
}

func setCreatedAt(t *testing.T, db *gorm.DB, c *models.Client, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Client{}).
		Where("id = ?", c.ID).
		UpdateColumn("created_at", at.UTC()).Error)
}

func TestEmptySalonYieldsZeroValues(t *testing.T) {
	db := testutil.NewDB(t)
	salon := testutil.Salon(t, db, "Salon A")
	r := newReports(db)
	ctx := context.Background()

	d, err := r.Dashboard(ctx, salon.ID)
	require.NoError(t, err)
	assert.Zero(t, d.TotalClients)
	assert.Zero(t, d.TotalServices)
	assert.Zero(t, d.ActiveAppointments)
	assert.Zero(t, d.TodayAppointments)
	assert.True(t, d.Revenue.IsZero())

	statuses, err := r.StatusBreakdown(ctx, salon.ID)
	require.NoError(t, err)
	assert.NotNil(t, statuses)
	assert.Empty(t, statuses)

	popular, err := r.PopularServices(ctx, salon.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, popular)
	assert.Empty(t, popular)

	daily, err := r.DailyRevenue(ctx, salon.ID, 7)
	require.NoError(t, err)
	require.Len(t, daily, 7)
	for _, p := range daily {
		assert.Zero(t, p.Count)
		assert.True(t, p.Revenue.IsZero())
	}
	assert.Equal(t, "2025-09-18", daily[0].Period)
	assert.Equal(t, "2025-09-24", daily[6].Period)

	perf, err := r.Performance(ctx, salon.ID)
	require.NoError(t, err)
	assert.NotNil(t, perf)
	assert.Empty(t, perf)
}

type populated struct {
	salon *models.Salon
	cut   *models.Service
	color *models.Service
	pro   *models.Professional
	idle  *models.Professional
}

func populate(t *testing.T, db *gorm.DB) populated {
	t.Helper()

	p := populated{salon: testutil.Salon(t, db, "Salon A")}
	other := testutil.Salon(t, db, "Salon B")

	ana := testutil.Client(t, db, p.salon.ID, "Ana", "11911111111", 0)
	bia := testutil.Client(t, db, p.salon.ID, "Bia", "11922222222", 0)
	setCreatedAt(t, db, ana, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	setCreatedAt(t, db, bia, time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC))

	p.cut = testutil.Service(t, db, p.salon.ID, "Corte", "50.00", 10)
	p.color = testutil.Service(t, db, p.salon.ID, "Coloracao", "120.00", 20)
	p.pro = testutil.Professional(t, db, p.salon.ID, "Joana")
	p.idle = testutil.Professional(t, db, p.salon.ID, "Paula")
	pid := &p.pro.ID

	testutil.Appointment(t, db, p.salon.ID, ana.ID, p.cut.ID, pid, testNow.AddDate(0, 0, -1), "completed")
	testutil.Appointment(t, db, p.salon.ID, bia.ID, p.cut.ID, pid, testNow.Add(-2*time.Hour), "completed")
	testutil.Appointment(t, db, p.salon.ID, ana.ID, p.cut.ID, pid, testNow.Add(5*time.Hour), "scheduled")
	testutil.Appointment(t, db, p.salon.ID, bia.ID, p.color.ID, pid, testNow.AddDate(0, 0, 1), "cancelled")

	// noise from another tenant
	oc := testutil.Client(t, db, other.ID, "Carla", "11933333333", 0)
	barba := testutil.Service(t, db, other.ID, "Barba", "30.00", 0)
	testutil.Appointment(t, db, other.ID, oc.ID, barba.ID, nil, testNow.Add(-time.Hour), "completed")

	return p
}

func TestDashboardCounts(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	d, err := newReports(db).Dashboard(context.Background(), p.salon.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.TotalClients)
	assert.Equal(t, int64(2), d.TotalServices)
	assert.Equal(t, int64(1), d.ActiveAppointments)
	assert.Equal(t, int64(1), d.TodayAppointments)
	assert.Equal(t, int64(1), d.NewClientsMonth)
	assert.Equal(t, "100", d.Revenue.String())
}

func TestStatusBreakdown(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	rows, err := newReports(db).StatusBreakdown(context.Background(), p.salon.ID)
	require.NoError(t, err)

	got := map[string]int64{}
	for _, r := range rows {
		got[r.Status] = r.Total
	}
	assert.Equal(t, map[string]int64{"cancelled": 1, "completed": 2, "scheduled": 1}, got)
}

func TestPopularServicesRespectsLimit(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)
	r := newReports(db)

	rows, err := r.PopularServices(context.Background(), p.salon.ID, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, p.cut.ID, rows[0].ServiceID)
	assert.Equal(t, "Corte", rows[0].Name)
	assert.Equal(t, int64(3), rows[0].Total)
	assert.Equal(t, "100", rows[0].Revenue.String())

	rows, err = r.PopularServices(context.Background(), p.salon.ID, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDailyRevenueBucketsByDay(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	series, err := newReports(db).DailyRevenue(context.Background(), p.salon.ID, 3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "2025-09-22", series[0].Period)
	assert.Zero(t, series[0].Count)

	assert.Equal(t, "2025-09-23", series[1].Period)
	assert.Equal(t, int64(1), series[1].Count)
	assert.Equal(t, "50", series[1].Revenue.String())

	assert.Equal(t, "2025-09-24", series[2].Period)
	assert.Equal(t, int64(1), series[2].Count)
	assert.Equal(t, "50", series[2].Revenue.String())
}

func TestMonthlyRevenue(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	series, err := newReports(db).MonthlyRevenue(context.Background(), p.salon.ID, 2)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "2025-08", series[0].Period)
	assert.True(t, series[0].Revenue.IsZero())
	assert.Equal(t, "2025-09", series[1].Period)
	assert.Equal(t, int64(2), series[1].Count)
	assert.Equal(t, "100", series[1].Revenue.String())
}

func TestNewClientsPerDay(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	series, err := newReports(db).NewClients(context.Background(), p.salon.ID, 30)
	require.NoError(t, err)
	require.Len(t, series, 30)

	var total int64
	for _, pt := range series {
		total += pt.Count
		if pt.Period == "2025-09-10" {
			assert.Equal(t, int64(1), pt.Count)
		}
	}
	assert.Equal(t, int64(1), total)
}

func TestPerformanceIncludesIdleProfessionals(t *testing.T) {
	db := testutil.NewDB(t)
	p := populate(t, db)

	rows, err := newReports(db).Performance(context.Background(), p.salon.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	top := rows[0]
	assert.Equal(t, p.pro.ID, top.ProfessionalID)
	assert.Equal(t, int64(4), top.Total)
	assert.Equal(t, int64(2), top.Completed)
	assert.Equal(t, int64(1), top.Cancelled)
	assert.Zero(t, top.NoShow)
	assert.Equal(t, "100", top.Revenue.String())

	idle := rows[1]
	assert.Equal(t, p.idle.ID, idle.ProfessionalID)
	assert.Zero(t, idle.Total)
	assert.True(t, idle.Revenue.IsZero())
}
