package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	SalonID uint  `gorm:"not null;index" json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name            string          `gorm:"size:120;not null" json:"name"`
	Description     string          `gorm:"size:500" json:"description"`
	DurationMinutes int             `gorm:"not null;default:30" json:"duration_minutes"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	LoyaltyPoints   int             `gorm:"not null;default:0" json:"loyalty_points"`
	Active          bool            `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
