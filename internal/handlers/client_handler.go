package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// Every 100 points are worth 10.00 off.
const (
	pointsPerReward = 100
	rewardValue     = 10
)

type ClientHandler struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	audit  *audit.Dispatcher
	clock  timezone.Clock
}

func NewClientHandler(
	db *gorm.DB,
	tokens *auth.TokenManager,
	dispatcher *audit.Dispatcher,
	clock timezone.Clock,
) *ClientHandler {
	return &ClientHandler{
		db:     db,
		tokens: tokens,
		audit:  dispatcher,
		clock:  clock,
	}
}

// --------- Requests ---------

type CreateClientRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=120"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

type PointsRequest struct {
	Points int `json:"points" binding:"required,gt=0"`
}

type RedeemResponse struct {
	PointsRedeemed  int             `json:"points_redeemed"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	RemainingPoints int             `json:"remaining_points"`
}

type ClientStats struct {
	TotalAppointments    int64 `json:"total_appointments"`
	LoyaltyPoints        int   `json:"loyalty_points"`
	UpcomingAppointments int64 `json:"upcoming_appointments"`
}

// --------- Owner ---------

func (h *ClientHandler) List(c *gin.Context) {
	salonID := salonIDFrom(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("salon_id = ?", salonID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, clients)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if !bindJSON(c, &req, false) {
		return
	}

	client, err := h.newClient(c, salonIDFrom(c), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "client_created", "client", &client.ID,
		fmt.Sprintf("Cliente %s cadastrado", client.Name)))

	httpresp.Created(c, client)
}

func (h *ClientHandler) Get(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}
	httpresp.OK(c, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_request"))
			return
		}
		client.Name = name
	}
	if req.Email != nil {
		client.Email = optional(validators.NormalizeEmail(*req.Email))
	}
	if req.Phone != nil {
		phone, ok := validators.CleanPhone(*req.Phone)
		if !ok {
			httperr.Respond(c, httperr.ErrValidation("invalid_phone"))
			return
		}
		client.Phone = optional(phone)
	}

	if err := h.db.WithContext(c.Request.Context()).Save(client).Error; err != nil {
		httperr.Respond(c, clientWriteError(err))
		return
	}

	httpresp.OK(c, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(client).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "client_deleted", "client", &client.ID,
		fmt.Sprintf("Cliente %s excluído", client.Name)))

	httpresp.Message(c, "Cliente excluído com sucesso.")
}

// --------- Loyalty ---------

func (h *ClientHandler) AddPoints(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req PointsRequest
	if !bindJSON(c, &req, false) {
		return
	}

	db := h.db.WithContext(c.Request.Context())
	if err := db.Model(&models.Client{}).
		Where("id = ?", client.ID).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", req.Points)).Error; err != nil {

		httperr.Respond(c, err)
		return
	}
	if err := db.First(client, client.ID).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "loyalty_points_added", "client", &client.ID,
		fmt.Sprintf("%d pontos adicionados para %s", req.Points, client.Name)))

	httpresp.OK(c, client)
}

// RedeemPoints is open to the salon owner and to the client itself.
func (h *ClientHandler) RedeemPoints(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req PointsRequest
	if !bindJSON(c, &req, false) {
		return
	}

	// the guard keeps concurrent redeems from going below zero
	db := h.db.WithContext(c.Request.Context())
	res := db.Model(&models.Client{}).
		Where("id = ? AND loyalty_points >= ?", client.ID, req.Points).
		Update("loyalty_points", gorm.Expr("loyalty_points - ?", req.Points))
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, httperr.ErrConflict("insufficient_points"))
		return
	}
	if err := db.First(client, client.ID).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	discount := Discount(req.Points)

	h.audit.Dispatch(requestEvent(c, "loyalty_points_redeemed", "client", &client.ID,
		fmt.Sprintf("Cliente %s resgatou %d pontos (R$ %s de desconto)", client.Name, req.Points, discount.StringFixed(2))))

	httpresp.OK(c, RedeemResponse{
		PointsRedeemed:  req.Points,
		DiscountValue:   discount,
		RemainingPoints: client.LoyaltyPoints,
	})
}

// Discount converts redeemed points into money. Partial blocks of 100
// points are worth nothing.
func Discount(points int) decimal.Decimal {
	return decimal.NewFromInt(int64(points / pointsPerReward * rewardValue)).Round(2)
}

// --------- Client self-service ---------

func (h *ClientHandler) Me(c *gin.Context) {
	id := middleware.Identity(c)

	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).First(&client, id.UserID).Error; err != nil {
		httperr.Respond(c, httperr.ErrNotFound("client_not_found"))
		return
	}

	httpresp.OK(c, client)
}

func (h *ClientHandler) Stats(c *gin.Context) {
	id := middleware.Identity(c)
	db := h.db.WithContext(c.Request.Context())

	var client models.Client
	if err := db.First(&client, id.UserID).Error; err != nil {
		httperr.Respond(c, httperr.ErrNotFound("client_not_found"))
		return
	}

	out := ClientStats{LoyaltyPoints: client.LoyaltyPoints}

	if err := db.Model(&models.Appointment{}).
		Where("client_id = ? AND status = ?", client.ID, domain.StatusCompleted).
		Count(&out.TotalAppointments).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	if err := db.Model(&models.Appointment{}).
		Where("client_id = ? AND status IN ? AND appointment_datetime > ?",
			client.ID, domain.ActiveStatuses, h.clock.Now().UTC()).
		Count(&out.UpcomingAppointments).Error; err != nil {

		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, out)
}

// --------- Public ---------

// Register creates a client with a password on the salon's public page and
// signs it in.
func (h *ClientHandler) Register(c *gin.Context) {
	salonID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RegisterClientRequest
	if !bindJSON(c, &req, false) {
		return
	}

	var s models.Salon
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_admin = ? AND active = ?", salonID, false, true).
		First(&s).Error; err != nil {

		if httperr.IsNotFound(err) {
			httperr.Respond(c, httperr.ErrNotFound("salon_not_found"))
			return
		}
		httperr.Respond(c, err)
		return
	}

	client, err := h.newClient(c, s.ID, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	pair, err := h.tokens.Issue(client.ID, models.RoleClient, s.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		Action:   "client_registered",
		ActorID:  &client.ID,
		SalonID:  &s.ID,
		Entity:   "client",
		EntityID: &client.ID,
		Details:  fmt.Sprintf("Cliente %s cadastrou-se", client.Name),
		IP:       c.ClientIP(),
	})

	id := &auth.Identity{UserID: client.ID, Role: models.RoleClient, SalonID: s.ID, Salon: &s, Client: client}
	httpresp.Created(c, dto.LoginResponse{TokenPair: pair, User: dto.NewUserDTO(id)})
}

// --------- Helpers ---------

// find loads :id scoped to the caller. Clients only reach their own row.
func (h *ClientHandler) find(c *gin.Context) (*models.Client, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	ident := middleware.Identity(c)
	if ident.IsClient() && ident.UserID != id {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"))
		return nil, false
	}

	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND salon_id = ?", id, ident.SalonID).
		First(&client).Error; err != nil {

		if httperr.IsNotFound(err) {
			httperr.Respond(c, httperr.ErrNotFound("client_not_found"))
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}

	return &client, true
}

func (h *ClientHandler) newClient(
	c *gin.Context,
	salonID uint,
	name, email, phone, password string,
) (*models.Client, error) {

	cleaned, ok := validators.CleanPhone(phone)
	if !ok {
		return nil, httperr.ErrValidation("invalid_phone")
	}

	client := &models.Client{
		SalonID: salonID,
		Name:    strings.TrimSpace(name),
		Email:   optional(validators.NormalizeEmail(email)),
		Phone:   optional(cleaned),
	}
	if client.Name == "" {
		return nil, httperr.ErrValidation("invalid_request")
	}

	db := h.db.WithContext(c.Request.Context())

	if client.Email != nil {
		var n int64
		if err := db.Model(&models.Client{}).
			Where("salon_id = ? AND email = ?", salonID, *client.Email).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, httperr.ErrConflict("email_already_exists")
		}
	}

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		client.PasswordHash = &hash
	}

	if err := db.Create(client).Error; err != nil {
		return nil, clientWriteError(err)
	}
	return client, nil
}

func clientWriteError(err error) error {
	if httperr.IsUniqueViolation(err, "ux_clients_salon_phone") {
		return httperr.ErrConflict("phone_already_exists")
	}
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
