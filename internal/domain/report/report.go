package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Dashboard struct {
	TotalClients       int64           `json:"total_clients"`
	TotalServices      int64           `json:"total_services"`
	ActiveAppointments int64           `json:"active_appointments"`
	Revenue            decimal.Decimal `json:"revenue"`
	TodayAppointments  int64           `json:"today_appointments"`
	NewClientsMonth    int64           `json:"new_clients_month"`
}

type StatusCount struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

type PopularService struct {
	ServiceID uint            `json:"service_id"`
	Name      string          `json:"name"`
	Total     int64           `json:"total"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Point is one bucket of a time series. Period is YYYY-MM-DD or YYYY-MM.
type Point struct {
	Period  string          `json:"period"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProfessionalPerformance struct {
	ProfessionalID uint            `json:"professional_id"`
	Name           string          `json:"name"`
	Total          int64           `json:"total"`
	Completed      int64           `json:"completed"`
	Cancelled      int64           `json:"cancelled"`
	NoShow         int64           `json:"no_show"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// Completed is the slice of an appointment the revenue series need.
type Completed struct {
	At    time.Time
	Price decimal.Decimal
}

// Period bounds a query; nil ends are open.
type Period struct {
	From *time.Time
	To   *time.Time
}

type Repository interface {
	CountClients(ctx context.Context, salonID uint, createdSince *time.Time) (int64, error)
	CountServices(ctx context.Context, salonID uint) (int64, error)
	CountAppointments(ctx context.Context, salonID uint, statuses []string, p Period) (int64, error)
	SumRevenue(ctx context.Context, salonID uint, p Period) (decimal.Decimal, error)

	StatusCounts(ctx context.Context, salonID uint) ([]StatusCount, error)
	PopularServices(ctx context.Context, salonID uint, limit int) ([]PopularService, error)
	ListCompleted(ctx context.Context, salonID uint, p Period) ([]Completed, error)
	ClientsCreatedSince(ctx context.Context, salonID uint, since time.Time) ([]time.Time, error)
	Performance(ctx context.Context, salonID uint) ([]ProfessionalPerformance, error)
}
