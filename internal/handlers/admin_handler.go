package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// AdminHandler serves the /salons/admin routes. All of them require the
// admin role.
type AdminHandler struct {
	salons *salon.Service
	images *storage.Images
	clock  timezone.Clock
}

func NewAdminHandler(salons *salon.Service, images *storage.Images, clock timezone.Clock) *AdminHandler {
	return &AdminHandler{salons: salons, images: images, clock: clock}
}

// --------- Requests ---------

type CreateSalonRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address" binding:"max=255"`
	Description string `json:"description" binding:"max=500"`
}

type CreateSalonResponse struct {
	Salon        *models.Salon `json:"salon"`
	TempPassword string        `json:"temp_password"`
}

type SubscriptionRequest struct {
	Paid    *bool  `json:"subscription_paid" binding:"required"`
	DueDate string `json:"subscription_due_date"`
}

type SalonStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type OwnerInfoRequest struct {
	OwnerName *string `json:"owner_name" binding:"omitempty,max=120"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
}

// --------- Handlers ---------

// Create provisions an owner account. The temporary password is only
// returned here.
func (h *AdminHandler) Create(c *gin.Context) {
	var req CreateSalonRequest
	if !bindJSON(c, &req, false) {
		return
	}

	res, err := h.salons.Provision(c.Request.Context(), salon.ProvisionInput{
		AdminID:     middleware.Identity(c).UserID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       validators.NormalizePhone(req.Phone),
		Address:     req.Address,
		Description: req.Description,
		IP:          c.ClientIP(),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, CreateSalonResponse{Salon: res.Salon, TempPassword: res.TempPassword})
}

func (h *AdminHandler) UpdateSubscription(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req SubscriptionRequest
	if !bindJSON(c, &req, false) {
		return
	}

	in := salon.SubscriptionInput{
		AdminID: middleware.Identity(c).UserID,
		SalonID: salonID,
		Paid:    *req.Paid,
		IP:      c.ClientIP(),
	}

	if req.DueDate != "" {
		due, err := timezone.ParseDate(req.DueDate, h.clock.Location())
		if err != nil {
			httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
			return
		}
		in.DueDate = &due
	}

	s, err := h.salons.UpdateSubscription(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) SetStatus(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req SalonStatusRequest
	if !bindJSON(c, &req, false) {
		return
	}

	s, err := h.salons.SetStatus(c.Request.Context(), salon.StatusInput{
		AdminID: middleware.Identity(c).UserID,
		SalonID: salonID,
		Active:  *req.Active,
		IP:      c.ClientIP(),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) Subscriptions(c *gin.Context) {
	out, err := h.salons.ListSubscriptions(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *AdminHandler) Owners(c *gin.Context) {
	out, err := h.salons.ListOwners(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, out)
}

// --------- Company management ---------

func (h *AdminHandler) edit(c *gin.Context) (salon.AdminEdit, bool) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return salon.AdminEdit{}, false
	}
	return salon.AdminEdit{
		AdminID: middleware.Identity(c).UserID,
		SalonID: salonID,
		IP:      c.ClientIP(),
	}, true
}

func (h *AdminHandler) CompanyDetails(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s, err := h.salons.Company(c.Request.Context(), salonID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) UpdateCompanyBasicInfo(c *gin.Context) {
	e, ok := h.edit(c)
	if !ok {
		return
	}

	var req UpdateSalonRequest
	if !bindJSON(c, &req, false) {
		return
	}
	if !cleanPhoneField(c, &req.Phone) {
		return
	}

	s, err := h.salons.AdminUpdateProfile(c.Request.Context(), e, salon.ProfileInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) UpdateCompanyAppearance(c *gin.Context) {
	e, ok := h.edit(c)
	if !ok {
		return
	}

	var req AppearanceRequest
	if !bindJSON(c, &req, false) {
		return
	}

	s, err := h.salons.AdminUpdateAppearance(c.Request.Context(), e, salon.AppearanceInput{
		PrimaryColor:    req.PrimaryColor,
		SecondaryColor:  req.SecondaryColor,
		CardDescription: req.CardDescription,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) UpdateCompanyOwnerInfo(c *gin.Context) {
	e, ok := h.edit(c)
	if !ok {
		return
	}

	var req OwnerInfoRequest
	if !bindJSON(c, &req, false) {
		return
	}
	if !cleanPhoneField(c, &req.Phone) {
		return
	}

	s, err := h.salons.UpdateOwnerInfo(c.Request.Context(), e, salon.OwnerInfoInput{
		OwnerName: req.OwnerName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *AdminHandler) UploadCompanyLogo(c *gin.Context) {
	e, ok := h.edit(c)
	if !ok {
		return
	}

	// 404 before storing anything
	if _, err := h.salons.Company(c.Request.Context(), e.SalonID); err != nil {
		httperr.Respond(c, err)
		return
	}

	url, ok := saveImage(c, h.images, e.SalonID, "logo", storage.LogoMaxSide)
	if !ok {
		return
	}

	s, err := h.salons.AdminSetLogo(c.Request.Context(), e, url)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}
