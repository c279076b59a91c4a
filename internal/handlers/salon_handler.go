package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// SalonHandler serves the owner's own salon profile.
type SalonHandler struct {
	salons *salon.Service
	images *storage.Images
}

func NewSalonHandler(salons *salon.Service, images *storage.Images) *SalonHandler {
	return &SalonHandler{salons: salons, images: images}
}

type UpdateSalonRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type AppearanceRequest struct {
	PrimaryColor    *string `json:"primary_color" binding:"omitempty,hexcolor"`
	SecondaryColor  *string `json:"secondary_color" binding:"omitempty,hexcolor"`
	CardDescription *string `json:"card_description" binding:"omitempty,max=255"`
}

func (h *SalonHandler) GetMe(c *gin.Context) {
	s, err := h.salons.Get(c.Request.Context(), salonIDFrom(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *SalonHandler) UpdateMe(c *gin.Context) {
	var req UpdateSalonRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if !cleanPhoneField(c, &req.Phone) {
		return
	}

	s, err := h.salons.UpdateProfile(c.Request.Context(), salonIDFrom(c), salon.ProfileInput{
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

func (h *SalonHandler) UpdateAppearance(c *gin.Context) {
	var req AppearanceRequest
	if !bindJSON(c, &req, false) {
		return
	}

	s, err := h.salons.UpdateAppearance(c.Request.Context(), salonIDFrom(c), salon.AppearanceInput{
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

func (h *SalonHandler) UploadLogo(c *gin.Context) {
	salonID := salonIDFrom(c)

	url, ok := saveImage(c, h.images, salonID, "logo", storage.LogoMaxSide)
	if !ok {
		return
	}

	s, err := h.salons.SetLogo(c.Request.Context(), salonID, url)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

// ShareLink returns the booking link an owner sends to clients.
func (h *SalonHandler) ShareLink(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	link, err := h.salons.ShareLink(c.Request.Context(), salonIDFrom(c), salonID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, link)
}

// cleanPhoneField normalizes an optional phone in place. It answers the
// request itself when the value has no digits.
func cleanPhoneField(c *gin.Context, phone **string) bool {
	if *phone == nil {
		return true
	}
	p, ok := validators.CleanPhone(**phone)
	if !ok {
		httperr.Respond(c, httperr.ErrValidation("invalid_phone"))
		return false
	}
	*phone = &p
	return true
}
