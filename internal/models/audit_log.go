package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Action  string `gorm:"size:50;not null;index" json:"action"`
	ActorID *uint  `gorm:"index" json:"actor_id"`
	SalonID *uint  `gorm:"index" json:"salon_id"`

	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entity_id"`

	Details   string         `gorm:"type:text" json:"details"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	Metadata  datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
