package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated salon directory. Inactive
// salons are reported as missing.
type PublicHandler struct {
	db     *gorm.DB
	salons *salon.Service
}

func NewPublicHandler(db *gorm.DB, salons *salon.Service) *PublicHandler {
	return &PublicHandler{db: db, salons: salons}
}

////////////////////////////////////////////////////////
// SALONS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListSalons(c *gin.Context) {
	out, err := h.salons.ListPublic(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *PublicHandler) GetSalon(c *gin.Context) {
	s, ok := h.salon(c)
	if !ok {
		return
	}
	httpresp.OK(c, s)
}

func (h *PublicHandler) BusinessHours(c *gin.Context) {
	s, ok := h.salon(c)
	if !ok {
		return
	}

	var bh models.BusinessHours
	err := h.db.WithContext(c.Request.Context()).Where("salon_id = ?", s.ID).First(&bh).Error
	switch {
	case err == nil:
		httpresp.OK(c, dto.NewBusinessHoursDTO(&bh))
	case httperr.IsNotFound(err):
		httpresp.OK(c, dto.NewBusinessHoursDTO(models.DefaultBusinessHours(s.ID)))
	default:
		httperr.Respond(c, err)
	}
}

////////////////////////////////////////////////////////
// CATALOG
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	s, ok := h.salon(c)
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Where("salon_id = ? AND active = ?", s.ID, true)

	if query := strings.TrimSpace(strings.ToLower(c.Query("query"))); query != "" {
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

// ListProfessionals accepts ?service_id= to only list professionals
// linked to that service.
func (h *PublicHandler) ListProfessionals(c *gin.Context) {
	s, ok := h.salon(c)
	if !ok {
		return
	}

	pros, err := activeProfessionalsFor(
		h.db.WithContext(c.Request.Context()),
		s.ID,
		queryUintPtr(c, "service_id"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, pros)
}

func (h *PublicHandler) salon(c *gin.Context) (*salon.PublicSalon, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	s, err := h.salons.GetPublic(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}
	return s, true
}
