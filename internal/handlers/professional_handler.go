package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

type ProfessionalHandler struct {
	db     *gorm.DB
	images *storage.Images
	audit  *audit.Dispatcher
}

func NewProfessionalHandler(
	db *gorm.DB,
	images *storage.Images,
	dispatcher *audit.Dispatcher,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		db:     db,
		images: images,
		audit:  dispatcher,
	}
}

// --------- Requests ---------

type CreateProfessionalRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty" binding:"max=120"`
	Active    *bool  `json:"active"`
}

type UpdateProfessionalRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,max=120"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Specialty *string `json:"specialty,omitempty" binding:"omitempty,max=120"`
	Active    *bool   `json:"active,omitempty"`
}

// --------- CRUD ---------

func (h *ProfessionalHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Where("salon_id = ?", salonIDFrom(c))

	switch c.Query("active") {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var pros []models.Professional
	if err := q.Order("name ASC").Find(&pros).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, pros)
}

func (h *ProfessionalHandler) Create(c *gin.Context) {
	var req CreateProfessionalRequest
	if !bindJSON(c, &req, false) {
		return
	}

	pro := models.Professional{
		SalonID:   salonIDFrom(c),
		Name:      strings.TrimSpace(req.Name),
		Email:     optional(validators.NormalizeEmail(req.Email)),
		Phone:     validators.NormalizePhone(req.Phone),
		Specialty: req.Specialty,
		Active:    req.Active == nil || *req.Active,
	}
	if pro.Name == "" {
		httperr.Respond(c, httperr.ErrValidation("invalid_request"))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&pro).Error; err != nil {
		httperr.Respond(c, professionalWriteError(err))
		return
	}

	h.audit.Dispatch(requestEvent(c, "professional_created", "professional", &pro.ID,
		fmt.Sprintf("Profissional %s cadastrado", pro.Name)))

	httpresp.Created(c, pro)
}

func (h *ProfessionalHandler) Get(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}
	httpresp.OK(c, pro)
}

func (h *ProfessionalHandler) Update(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}

	var req UpdateProfessionalRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_request"))
			return
		}
		pro.Name = name
	}
	if req.Email != nil {
		pro.Email = optional(validators.NormalizeEmail(*req.Email))
	}
	if req.Phone != nil {
		pro.Phone = validators.NormalizePhone(*req.Phone)
	}
	if req.Specialty != nil {
		pro.Specialty = *req.Specialty
	}
	if req.Active != nil {
		pro.Active = *req.Active
	}

	if err := h.db.WithContext(c.Request.Context()).Save(pro).Error; err != nil {
		httperr.Respond(c, professionalWriteError(err))
		return
	}

	httpresp.OK(c, pro)
}

// Delete removes the professional and its service links. Appointments keep
// their row with professional_id set to NULL.
func (h *ProfessionalHandler) Delete(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Appointment{}).
			Where("professional_id = ?", pro.ID).
			Update("professional_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("professional_id = ?", pro.ID).
			Delete(&models.ServiceProfessional{}).Error; err != nil {
			return err
		}
		return tx.Delete(pro).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "professional_deleted", "professional", &pro.ID,
		fmt.Sprintf("Profissional %s excluído", pro.Name)))

	httpresp.Message(c, "Profissional excluído com sucesso.")
}

// --------- Services ---------

func (h *ProfessionalHandler) LinkService(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}
	service, ok := h.findService(c)
	if !ok {
		return
	}

	link := models.ServiceProfessional{
		SalonID:        pro.SalonID,
		ServiceID:      service.ID,
		ProfessionalID: pro.ID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&link).Error; err != nil {
		if httperr.IsUniqueViolation(err, "ux_service_professional") {
			httperr.Respond(c, httperr.ErrConflict("already_linked"))
			return
		}
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, link)
}

func (h *ProfessionalHandler) UnlinkService(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}
	serviceID, ok := paramID(c, "service_id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("salon_id = ? AND professional_id = ? AND service_id = ?", pro.SalonID, pro.ID, serviceID).
		Delete(&models.ServiceProfessional{})
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, httperr.ErrNotFound("link_not_found"))
		return
	}

	httpresp.Message(c, "Vínculo removido com sucesso.")
}

// ListServices returns the services a professional performs.
func (h *ProfessionalHandler) ListServices(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Joins("JOIN service_professionals sp ON sp.service_id = services.id").
		Where("sp.professional_id = ? AND services.salon_id = ?", pro.ID, pro.SalonID).
		Order("services.name ASC").
		Find(&services).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}

// AvailableForService lists active professionals linked to :service_id.
func (h *ProfessionalHandler) AvailableForService(c *gin.Context) {
	service, ok := h.findService(c)
	if !ok {
		return
	}

	pros, err := activeProfessionalsFor(h.db.WithContext(c.Request.Context()), service.SalonID, &service.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, pros)
}

// --------- Photo ---------

func (h *ProfessionalHandler) UploadPhoto(c *gin.Context) {
	pro, ok := h.find(c, "id")
	if !ok {
		return
	}

	url, ok := saveImage(c, h.images, pro.SalonID, "professionals", storage.PhotoMaxSide)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(pro).
		Update("photo_url", url).Error; err != nil {

		httperr.Respond(c, err)
		return
	}
	pro.PhotoURL = url

	h.audit.Dispatch(requestEvent(c, "professional_photo_updated", "professional", &pro.ID,
		fmt.Sprintf("Foto de %s atualizada", pro.Name)))

	httpresp.OK(c, pro)
}

// --------- Helpers ---------

func (h *ProfessionalHandler) find(c *gin.Context, param string) (*models.Professional, bool) {
	id, ok := paramID(c, param)
	if !ok {
		return nil, false
	}

	var pro models.Professional
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND salon_id = ?", id, salonIDFrom(c)).
		First(&pro).Error; err != nil {

		if httperr.IsNotFound(err) {
			httperr.Respond(c, httperr.ErrNotFound("professional_not_found"))
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}

	return &pro, true
}

func (h *ProfessionalHandler) findService(c *gin.Context) (*models.Service, bool) {
	id, ok := paramID(c, "service_id")
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

// activeProfessionalsFor lists the active professionals of a salon,
// optionally only those linked to serviceID.
func activeProfessionalsFor(db *gorm.DB, salonID uint, serviceID *uint) ([]models.Professional, error) {
	q := db.Where("professionals.salon_id = ? AND professionals.active = ?", salonID, true)
	if serviceID != nil {
		q = q.Joins("JOIN service_professionals sp ON sp.professional_id = professionals.id").
			Where("sp.service_id = ?", *serviceID)
	}

	var pros []models.Professional
	err := q.Order("professionals.name ASC").Find(&pros).Error
	return pros, err
}

func professionalWriteError(err error) error {
	if httperr.IsUniqueViolation(err, "") {
		return httperr.ErrConflict("email_already_exists")
	}
	return err
}
