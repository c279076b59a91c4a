package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AppointmentDTO struct {
	ID      uint `json:"id"`
	SalonID uint `json:"salon_id"`

	ClientID    *uint  `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`

	ServiceID       uint   `json:"service_id"`
	ServiceName     string `json:"service_name"`
	DurationMinutes int    `json:"duration_minutes"`

	ProfessionalID   *uint  `json:"professional_id"`
	ProfessionalName string `json:"professional_name"`

	AppointmentDatetime time.Time `json:"appointment_datetime"`
	Date                string    `json:"date"`
	Time                string    `json:"time"`

	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
	Notes  string          `json:"notes"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// nil when the row is gone
	Client       *ClientSummary       `json:"client"`
	Service      *ServiceSummary      `json:"service"`
	Professional *ProfessionalSummary `json:"professional"`
}

type ClientSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	LoyaltyPoints int     `json:"loyalty_points"`
}

type ServiceSummary struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

type ProfessionalSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// NewAppointmentDTO attaches the relations both nested and flattened.
// Deleted relations leave empty names and a null object.
func NewAppointmentDTO(ap *models.Appointment, loc *time.Location) AppointmentDTO {
	local := ap.AppointmentDatetime.In(loc)

	out := AppointmentDTO{
		ID:                  ap.ID,
		SalonID:             ap.SalonID,
		ClientID:            ap.ClientID,
		ServiceID:           ap.ServiceID,
		ProfessionalID:      ap.ProfessionalID,
		AppointmentDatetime: local,
		Date:                local.Format("2006-01-02"),
		Time:                local.Format("15:04"),
		Price:               ap.Price,
		Status:              ap.Status,
		Notes:               ap.Notes,
		CancelledAt:         ap.CancelledAt,
		CompletedAt:         ap.CompletedAt,
		CreatedAt:           ap.CreatedAt,
	}

	if c := ap.Client; c != nil {
		out.ClientName = c.Name
		if c.Phone != nil {
			out.ClientPhone = *c.Phone
		}
		out.Client = &ClientSummary{
			ID:            c.ID,
			Name:          c.Name,
			Phone:         c.Phone,
			Email:         c.Email,
			LoyaltyPoints: c.LoyaltyPoints,
		}
	}
	if s := ap.Service; s != nil {
		out.ServiceName = s.Name
		out.DurationMinutes = s.DurationMinutes
		out.Service = &ServiceSummary{
			ID:              s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
	}
	if p := ap.Professional; p != nil {
		out.ProfessionalName = p.Name
		out.Professional = &ProfessionalSummary{
			ID:       p.ID,
			Name:     p.Name,
			PhotoURL: p.PhotoURL,
		}
	}
	return out
}

func NewAppointmentDTOs(apps []models.Appointment, loc *time.Location) []AppointmentDTO {
	out := make([]AppointmentDTO, len(apps))
	for i := range apps {
		out[i] = NewAppointmentDTO(&apps[i], loc)
	}
	return out
}
