package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
)

// requestEvent fills the actor, salon and address of an audit event from
// the request context.
func requestEvent(c *gin.Context, action, entity string, entityID *uint, details string) audit.Event {
	ev := audit.Event{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		IP:       c.ClientIP(),
	}

	if v, ok := c.Get(middleware.ContextUserID); ok {
		uid := v.(uint)
		ev.ActorID = &uid
	}
	if v, ok := c.Get(middleware.ContextSalonID); ok {
		sid := v.(uint)
		ev.SalonID = &sid
	}
	return ev
}
