package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type DayHours struct {
	Weekday int     `json:"weekday"`
	Name    string  `json:"name"`
	Open    *string `json:"open"`
	Close   *string `json:"close"`
	Closed  bool    `json:"closed"`
}

var weekdayNames = [...]string{
	"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado",
}

// NewBusinessHoursDTO lists the week starting on Monday.
func NewBusinessHoursDTO(bh *models.BusinessHours) []DayHours {
	out := make([]DayHours, 0, 7)
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		open, close := bh.Day(d)
		out = append(out, DayHours{
			Weekday: int(d),
			Name:    weekdayNames[d],
			Open:    open,
			Close:   close,
			Closed:  open == nil || close == nil,
		})
	}
	return out
}
