package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	list         *appointment.ListAppointments
	get          *appointment.GetAppointment
	create       *appointment.CreateAppointment
	createPublic *appointment.CreatePublicAppointment
	update       *appointment.UpdateAppointment
	status       *appointment.UpdateAppointmentStatus
	remove       *appointment.DeleteAppointment
	availability *appointment.GetAvailability

	clock timezone.Clock
}

func NewAppointmentHandler(
	repo domain.Repository,
	dispatcher *audit.Dispatcher,
	clock timezone.Clock,
) *AppointmentHandler {
	return &AppointmentHandler{
		list:         appointment.NewListAppointments(repo),
		get:          appointment.NewGetAppointment(repo),
		create:       appointment.NewCreateAppointment(repo, dispatcher, clock),
		createPublic: appointment.NewCreatePublicAppointment(repo, dispatcher, clock),
		update:       appointment.NewUpdateAppointment(repo, dispatcher, clock),
		status:       appointment.NewUpdateAppointmentStatus(repo, dispatcher, clock),
		remove:       appointment.NewDeleteAppointment(repo, dispatcher),
		availability: appointment.NewGetAvailability(repo, clock),
		clock:        clock,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	SalonID             uint             `json:"salon_id"`
	ClientID            uint             `json:"client_id"`
	ServiceID           uint             `json:"service_id" binding:"required"`
	ProfessionalID      *uint            `json:"professional_id"`
	AppointmentDatetime string           `json:"appointment_datetime" binding:"required"`
	Price               *decimal.Decimal `json:"price"`
	Notes               string           `json:"notes" binding:"max=500"`
}

type UpdateAppointmentRequest struct {
	AppointmentDatetime *string          `json:"appointment_datetime"`
	ServiceID           *uint            `json:"service_id"`
	ProfessionalID      *uint            `json:"professional_id"`
	ClearProfessional   bool             `json:"clear_professional"`
	Price               *decimal.Decimal `json:"price"`
	Notes               *string          `json:"notes" binding:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PublicAppointmentRequest struct {
	ClientName          string `json:"client_name" binding:"required"`
	ClientPhone         string `json:"client_phone" binding:"required"`
	ClientEmail         string `json:"client_email" binding:"omitempty,email"`
	ServiceID           uint   `json:"service_id" binding:"required"`
	ProfessionalID      *uint  `json:"professional_id"`
	AppointmentDatetime string `json:"appointment_datetime" binding:"required"`
	Notes               string `json:"notes" binding:"max=500"`
}

type StatusResponse struct {
	dto.AppointmentDTO
	PointsAwarded int `json:"points_awarded"`
}

// ======================================================
// LIST / GET
// ======================================================

// List serves both GET /appointments and GET /clients/me/appointments;
// the use case scopes rows to the caller.
func (h *AppointmentHandler) List(c *gin.Context) {
	in := appointment.ListAppointmentsInput{
		Actor:          actorFrom(c),
		Status:         c.Query("status"),
		ProfessionalID: queryUintPtr(c, "professional_id"),
	}

	if raw := c.Query("date"); raw != "" {
		day, err := timezone.ParseDate(raw, h.clock.Location())
		if err != nil {
			httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
			return
		}
		in.Date = &day
	}

	apps, err := h.list.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.NewAppointmentDTOs(apps, h.clock.Location()))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewAppointmentDTO(ap, h.clock.Location()))
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSON(c, &req, false) {
		return
	}

	at, err := parseDateTime(req.AppointmentDatetime, h.clock.Location())
	if err != nil {
		httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		Actor:          actorFrom(c),
		SalonID:        req.SalonID,
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		Datetime:       at,
		Price:          req.Price,
		Notes:          req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.NewAppointmentDTO(ap, h.clock.Location()))
}

// CreatePublic books from the salon's public page without a login.
func (h *AppointmentHandler) CreatePublic(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req PublicAppointmentRequest
	if !bindJSON(c, &req, false) {
		return
	}

	at, err := parseDateTime(req.AppointmentDatetime, h.clock.Location())
	if err != nil {
		httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
		return
	}

	phone, ok := validators.CleanPhone(req.ClientPhone)
	if !ok {
		httperr.Respond(c, httperr.ErrValidation("invalid_phone"))
		return
	}

	ap, err := h.createPublic.Execute(c.Request.Context(), appointment.CreatePublicAppointmentInput{
		SalonID:        salonID,
		ClientName:     req.ClientName,
		ClientPhone:    phone,
		ClientEmail:    validators.NormalizeEmail(req.ClientEmail),
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		Datetime:       at,
		Notes:          req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.NewAppointmentDTO(ap, h.clock.Location()))
}

// ======================================================
// UPDATE / STATUS / DELETE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSON(c, &req, false) {
		return
	}

	in := appointment.UpdateAppointmentInput{
		Actor:             actorFrom(c),
		AppointmentID:     id,
		ServiceID:         req.ServiceID,
		ProfessionalID:    req.ProfessionalID,
		ClearProfessional: req.ClearProfessional,
		Price:             req.Price,
		Notes:             req.Notes,
	}

	if req.AppointmentDatetime != nil {
		at, err := parseDateTime(*req.AppointmentDatetime, h.clock.Location())
		if err != nil {
			httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
			return
		}
		in.Datetime = &at
	}

	ap, err := h.update.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewAppointmentDTO(ap, h.clock.Location()))
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req, false) {
		return
	}

	res, err := h.status.Execute(c.Request.Context(), appointment.UpdateStatusInput{
		Actor:         actorFrom(c),
		AppointmentID: id,
		Status:        req.Status,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, StatusResponse{
		AppointmentDTO: dto.NewAppointmentDTO(res.Appointment, h.clock.Location()),
		PointsAwarded:  res.PointsAwarded,
	})
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), actorFrom(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Agendamento excluído com sucesso.")
}

// ======================================================
// AVAILABILITY
// ======================================================

// Availability serves /professionals/:id/available-times and the
// salon-level /business-hours/available.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	var pro *uint
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		pro = &id
	}
	h.writeAvailability(c, salonIDFrom(c), pro)
}

// PublicAvailability serves /public/salons/:id/availability and
// /public/salons/:id/professionals/:pid/available-times.
func (h *AppointmentHandler) PublicAvailability(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	pro := queryUintPtr(c, "professional_id")
	if c.Param("pid") != "" {
		pid, ok := paramID(c, "pid")
		if !ok {
			return
		}
		pro = &pid
	}

	h.writeAvailability(c, salonID, pro)
}

func (h *AppointmentHandler) writeAvailability(c *gin.Context, salonID uint, professionalID *uint) {
	loc := h.clock.Location()

	day := timezone.StartOfDay(h.clock.Now())
	if raw := c.Query("date"); raw != "" {
		d, err := timezone.ParseDate(raw, loc)
		if err != nil {
			httperr.Respond(c, httperr.ErrValidation("invalid_date_or_time"))
			return
		}
		day = d
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		SalonID:        salonID,
		ProfessionalID: professionalID,
		Date:           day,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"date":  day.Format(time.DateOnly),
		"slots": slots,
		"total": len(slots),
	})
}
