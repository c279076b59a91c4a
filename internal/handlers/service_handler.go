package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type ServiceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string          `json:"name" binding:"required,max=120"`
	Description     string          `json:"description" binding:"max=500"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=1,max=600"`
	Price           decimal.Decimal `json:"price"`
	LoyaltyPoints   int             `json:"loyalty_points" binding:"min=0"`
	Active          *bool           `json:"active"`
}

type UpdateServiceRequest struct {
	Name            *string          `json:"name,omitempty" binding:"omitempty,max=120"`
	Description     *string          `json:"description,omitempty" binding:"omitempty,max=500"`
	DurationMinutes *int             `json:"duration_minutes,omitempty" binding:"omitempty,min=1,max=600"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	LoyaltyPoints   *int             `json:"loyalty_points,omitempty" binding:"omitempty,min=0"`
	Active          *bool            `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	salonID := salonIDFrom(c)

	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("salon_id = ?", salonID)

	switch activeStr {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if req.Price.IsNegative() || strings.TrimSpace(req.Name) == "" {
		httperr.Respond(c, httperr.ErrValidation("invalid_request"))
		return
	}

	service := models.Service{
		SalonID:         salonIDFrom(c),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price.Round(2),
		LoyaltyPoints:   req.LoyaltyPoints,
		Active:          req.Active == nil || *req.Active,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "service_created", "service", &service.ID,
		fmt.Sprintf("Serviço %s criado", service.Name)))

	httpresp.Created(c, service)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	service, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	service, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_request"))
			return
		}
		service.Name = name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.Respond(c, httperr.ErrValidation("invalid_request"))
			return
		}
		service.Price = req.Price.Round(2)
	}
	if req.LoyaltyPoints != nil {
		service.LoyaltyPoints = *req.LoyaltyPoints
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(service).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, service)
}

// Delete removes the service. Services referenced by appointments are
// deactivated instead, since the delete would cascade to them.
func (h *ServiceHandler) Delete(c *gin.Context) {
	service, ok := h.find(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var used int64
	if err := db.Model(&models.Appointment{}).
		Where("service_id = ?", service.ID).
		Count(&used).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	if used > 0 {
		if err := db.Model(service).Update("active", false).Error; err != nil {
			httperr.Respond(c, err)
			return
		}
		h.audit.Dispatch(requestEvent(c, "service_deactivated", "service", &service.ID,
			fmt.Sprintf("Serviço %s desativado", service.Name)))
		httpresp.Message(c, "Serviço possui agendamentos e foi desativado.")
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", service.ID).
			Delete(&models.ServiceProfessional{}).Error; err != nil {
			return err
		}
		return tx.Delete(service).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "service_deleted", "service", &service.ID,
		fmt.Sprintf("Serviço %s excluído", service.Name)))

	httpresp.Message(c, "Serviço excluído com sucesso.")
}

func (h *ServiceHandler) find(c *gin.Context) (*models.Service, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var service models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND salon_id = ?", id, salonIDFrom(c)).
		First(&service).Error; err != nil {

		if httperr.IsNotFound(err) {
			httperr.Respond(c, httperr.ErrNotFound("service_not_found"))
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}

	return &service, true
}
