package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

type BusinessHoursHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewBusinessHoursHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *BusinessHoursHandler {
	return &BusinessHoursHandler{db: db, audit: dispatcher}
}

type DayHoursRequest struct {
	Weekday int     `json:"weekday" binding:"min=0,max=6"`
	Open    *string `json:"open" binding:"omitempty,hhmm"`
	Close   *string `json:"close" binding:"omitempty,hhmm"`
}

type BusinessHoursUpdateRequest struct {
	Days []DayHoursRequest `json:"days" binding:"required,min=1,max=7,dive"`
}

func (h *BusinessHoursHandler) Get(c *gin.Context) {
	bh, err := h.load(c, salonIDFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewBusinessHoursDTO(bh))
}

// Update replaces the days sent in the body; other days keep their
// current hours. A day is closed when both open and close are null.
func (h *BusinessHoursHandler) Update(c *gin.Context) {
	var req BusinessHoursUpdateRequest
	if !bindJSON(c, &req, false) {
		return
	}

	salonID := salonIDFrom(c)

	bh, err := h.load(c, salonID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	for _, d := range req.Days {
		if err := ValidateDay(d.Open, d.Close); err != nil {
			httperr.Respond(c, err)
			return
		}
		bh.SetDay(time.Weekday(d.Weekday), d.Open, d.Close)
	}

	if err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(bh).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "business_hours_updated", "business_hours", &salonID,
		"Horário de funcionamento atualizado"))

	httpresp.OK(c, dto.NewBusinessHoursDTO(bh))
}

// ValidateDay accepts a closed day (both nil) or an HH:MM pair with open
// before close.
func ValidateDay(open, close *string) error {
	if open == nil && close == nil {
		return nil
	}
	if open == nil || close == nil {
		return httperr.ErrValidation("invalid_hours")
	}
	if !validators.IsHHMM(*open) || !validators.IsHHMM(*close) {
		return httperr.ErrValidation("invalid_hours")
	}
	// zero-padded HH:MM compares correctly as text
	if *open >= *close {
		return httperr.ErrValidation("invalid_hours")
	}
	return nil
}

// load returns the stored schedule, or the default template when the
// salon never saved one.
func (h *BusinessHoursHandler) load(c *gin.Context, salonID uint) (*models.BusinessHours, error) {
	var bh models.BusinessHours
	err := h.db.WithContext(c.Request.Context()).
		Where("salon_id = ?", salonID).
		First(&bh).Error
	if err == nil {
		return &bh, nil
	}
	if httperr.IsNotFound(err) {
		return models.DefaultBusinessHours(salonID), nil
	}
	return nil, err
}
