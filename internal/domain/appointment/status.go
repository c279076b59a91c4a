package appointment

import (
	"strings"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// ActiveStatuses hold a professional's slot and count against the client's
// one-active-appointment limit.
var ActiveStatuses = []string{
	string(StatusScheduled),
	string(StatusConfirmed),
}

// legacy spellings still sent by older clients
var aliases = map[string]Status{
	"scheduled":      StatusScheduled,
	"agendado":       StatusScheduled,
	"pending":        StatusScheduled,
	"pendente":       StatusScheduled,
	"confirmed":      StatusConfirmed,
	"confirmado":     StatusConfirmed,
	"cancelled":      StatusCancelled,
	"canceled":       StatusCancelled,
	"cancelado":      StatusCancelled,
	"completed":      StatusCompleted,
	"concluido":      StatusCompleted,
	"concluído":      StatusCompleted,
	"no_show":        StatusNoShow,
	"nao_compareceu": StatusNoShow,
}

// ParseStatus maps any accepted spelling to the canonical status.
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := aliases[key]; ok {
		return s, nil
	}
	return "", httperr.ErrValidation("invalid_status")
}

func (s Status) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// ===============================
// Validations
// ===============================

// CanTransition allows moves out of an active status into a different one,
// including confirmed back to scheduled. Terminal statuses never change
// again, which keeps point awards single.
func CanTransition(from, to Status) error {
	if !from.IsActive() || from == to {
		return httperr.ErrConflict("invalid_state")
	}
	return nil
}

// CanEdit rejects changes to appointments that are already closed.
func CanEdit(current Status) error {
	if !current.IsActive() {
		return httperr.ErrConflict("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
