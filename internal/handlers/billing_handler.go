package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/billing"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
)

type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: svc}
}

// webhookBody is the JSON callback; the id may arrive as a string or a
// number depending on the notification version.
type webhookBody struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	id := middleware.Identity(c)

	out, err := h.billing.Checkout(c.Request.Context(), id.Salon)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, out)
}

// Webhook receives payment notifications. Query-string callbacks
// (?type=payment&data.id=) and JSON bodies are both accepted.
func (h *BillingHandler) Webhook(c *gin.Context) {
	n := billing.Notification{
		Type:   c.Query("type"),
		DataID: c.Query("data.id"),
	}
	if n.Type == "" {
		n.Type = c.Query("topic")
	}
	if n.DataID == "" {
		n.DataID = c.Query("id")
	}

	if n.DataID == "" {
		var body webhookBody
		if !bindJSON(c, &body, false) {
			return
		}
		n.Type = body.Type
		if n.Type == "" {
			n.Type = body.Topic
		}
		n.DataID = body.Data.ID.String()
	}

	paid, err := h.billing.HandleNotification(c.Request.Context(), n)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"received": true, "processed": paid})
}
