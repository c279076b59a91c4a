package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Event is one audit record. Details is the human-readable line shown in
// the admin panel; Metadata is serialized to JSON.
type Event struct {
	Action   string
	ActorID  *uint
	SalonID  *uint
	Entity   string
	EntityID *uint
	Details  string
	IP       string
	Metadata any
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	return l.db.WithContext(ctx).Create(ev.record()).Error
}

// LogTx writes the event with the caller's transaction handle.
func LogTx(tx *gorm.DB, ev Event) error {
	return tx.Create(ev.record()).Error
}

func (ev Event) record() *models.AuditLog {
	var meta datatypes.JSON
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			meta = datatypes.JSON(b)
		}
	}

	return &models.AuditLog{
		Action:    ev.Action,
		ActorID:   ev.ActorID,
		SalonID:   ev.SalonID,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Details:   ev.Details,
		IPAddress: ev.IP,
		Metadata:  meta,
	}
}
