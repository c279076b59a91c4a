package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

func actorFrom(c *gin.Context) appointment.Actor {
	id := middleware.Identity(c)
	return appointment.Actor{
		UserID:  id.UserID,
		Role:    id.Role,
		SalonID: id.SalonID,
	}
}

func salonIDFrom(c *gin.Context) uint {
	return c.MustGet(middleware.ContextSalonID).(uint)
}

// paramID reads a positive numeric path parameter, answering 400 when it
// is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(v), true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryUintPtr(c *gin.Context, key string) *uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	u := uint(v)
	return &u
}

// bindJSON binds the body and answers 400 on failure. An empty body is
// accepted when optional is set.
func bindJSON(c *gin.Context, req any, optional bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
		return false
	}
	return true
}

func parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	return timezone.ParseDateTime(strings.TrimSpace(raw), loc)
}
