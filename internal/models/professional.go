package models

import "time"

type Professional struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	SalonID uint  `gorm:"not null;index" json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name      string  `gorm:"size:120;not null" json:"name"`
	Email     *string `gorm:"size:120;uniqueIndex" json:"email"`
	Phone     string  `gorm:"size:20" json:"phone"`
	Specialty string  `gorm:"size:120" json:"specialty"`
	PhotoURL  string  `gorm:"size:500" json:"photo_url"`
	Active    bool    `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceProfessional links a service to a professional able to perform it.
type ServiceProfessional struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	SalonID        uint `gorm:"not null;uniqueIndex:ux_service_professional,priority:1" json:"salon_id"`
	ServiceID      uint `gorm:"not null;uniqueIndex:ux_service_professional,priority:2" json:"service_id"`
	ProfessionalID uint `gorm:"not null;uniqueIndex:ux_service_professional,priority:3" json:"professional_id"`

	CreatedAt time.Time `json:"created_at"`
}
