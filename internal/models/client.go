package models

import "time"

// Client belongs to one salon. Clients created by anonymous bookings have
// no password.
type Client struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	SalonID uint  `gorm:"not null;uniqueIndex:ux_clients_salon_phone,priority:1;index" json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name  string  `gorm:"size:120;not null" json:"name"`
	Email *string `gorm:"size:120;index" json:"email"`
	Phone *string `gorm:"size:20;uniqueIndex:ux_clients_salon_phone,priority:2" json:"phone"`

	PasswordHash *string `gorm:"size:255" json:"-"`

	LoyaltyPoints int `gorm:"not null;default:0;check:chk_clients_loyalty_points,loyalty_points >= 0" json:"loyalty_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) HasLogin() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}
