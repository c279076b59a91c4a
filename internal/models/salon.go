package models

import (
	"time"

	"gorm.io/datatypes"
)

// Salon is the tenant account. Owners and admins both live here; admins
// are flagged with IsAdmin.
type Salon struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:120;not null" json:"name"`
	OwnerName string `gorm:"size:120" json:"owner_name"`

	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Phone       string `gorm:"size:20" json:"phone"`
	Address     string `gorm:"size:255" json:"address"`
	Description string `gorm:"size:500" json:"description"`

	Active  bool `gorm:"not null" json:"active"`
	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`

	SubscriptionPaid    bool            `gorm:"not null;default:false" json:"subscription_paid"`
	SubscriptionDueDate *datatypes.Date `json:"subscription_due_date"`

	HasTempPassword bool `gorm:"not null;default:false" json:"has_temp_password"`
	IsFirstLogin    bool `gorm:"not null;default:false" json:"is_first_login"`

	// card display
	LogoURL         string `gorm:"size:500" json:"logo_url"`
	PrimaryColor    string `gorm:"size:20" json:"primary_color"`
	SecondaryColor  string `gorm:"size:20" json:"secondary_color"`
	CardDescription string `gorm:"size:255" json:"card_description"`

	CreatedByID *uint  `json:"created_by_id"`
	CreatedBy   *Salon `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleOwner  = "owner"
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Role returns the token role for this account.
func (s *Salon) Role() string {
	if s.IsAdmin {
		return RoleAdmin
	}
	return RoleOwner
}
