package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	auth   *auth.Service
	salons *salon.Service
	audit  *audit.Dispatcher
}

func NewAuthHandler(
	db *gorm.DB,
	authSvc *auth.Service,
	salons *salon.Service,
	dispatcher *audit.Dispatcher,
) *AuthHandler {
	return &AuthHandler{
		db:     db,
		auth:   authSvc,
		salons: salons,
		audit:  dispatcher,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateMeRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// --------- Handlers ---------

// Register creates a salon owner account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req, false) {
		return
	}

	s, err := h.salons.Register(c.Request.Context(), salon.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       validators.NormalizePhone(req.Phone),
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	pair, err := h.auth.Tokens().Issue(s.ID, s.Role(), s.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	id := &auth.Identity{UserID: s.ID, Role: s.Role(), SalonID: s.ID, Salon: s}
	httpresp.Created(c, dto.LoginResponse{TokenPair: pair, User: dto.NewUserDTO(id)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req, false) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	uid, sid := res.Identity.UserID, res.Identity.SalonID
	h.audit.Dispatch(audit.Event{
		Action:  "login",
		ActorID: &uid,
		SalonID: &sid,
		Entity:  res.Identity.Role,
		Details: "Login realizado",
		IP:      c.ClientIP(),
	})

	httpresp.OK(c, dto.LoginResponse{TokenPair: res.Tokens, User: dto.NewUserDTO(res.Identity)})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req, false) {
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"access_token": access,
		"token_type":   "bearer",
		"expires_in":   int64(h.auth.Tokens().AccessTTL().Seconds()),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !bindJSON(c, &req, true) {
		return
	}

	id := middleware.Identity(c)
	if err := h.auth.Logout(c.Request.Context(), id, req.RefreshToken); err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "logout", id.Role, nil, "Logout realizado"))
	httpresp.Message(c, "Logout realizado com sucesso.")
}

func (h *AuthHandler) Me(c *gin.Context) {
	httpresp.OK(c, dto.NewUserDTO(middleware.Identity(c)))
}

// UpdateMe edits the caller's own profile: the salon for owners and
// admins, the client record for clients.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !bindJSON(c, &req, false) {
		return
	}

	id := middleware.Identity(c)
	ctx := c.Request.Context()

	if id.Client == nil {
		if req.Phone != nil {
			p := validators.NormalizePhone(*req.Phone)
			req.Phone = &p
		}
		s, err := h.salons.UpdateProfile(ctx, id.SalonID, salon.ProfileInput{
			Name:        req.Name,
			Phone:       req.Phone,
			Address:     req.Address,
			Description: req.Description,
		})
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		id.Salon = s
		httpresp.OK(c, dto.NewUserDTO(id))
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.Respond(c, httperr.ErrValidation("invalid_request"))
			return
		}
		updates["name"] = name
	}
	if req.Email != nil {
		updates["email"] = validators.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = validators.NormalizePhone(*req.Phone)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).
			Model(&models.Client{}).
			Where("id = ?", id.Client.ID).
			Updates(updates).Error; err != nil {

			if httperr.IsUniqueViolation(err, "ux_clients_salon_phone") {
				httperr.Respond(c, httperr.ErrConflict("phone_already_exists"))
				return
			}
			httperr.Respond(c, err)
			return
		}
	}

	var client models.Client
	if err := h.db.WithContext(ctx).First(&client, id.Client.ID).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	id.Client = &client
	httpresp.OK(c, dto.NewUserDTO(id))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req, false) {
		return
	}

	id := middleware.Identity(c)
	if err := h.auth.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(requestEvent(c, "password_changed", id.Role, nil, "Senha alterada"))
	httpresp.Message(c, "Senha alterada com sucesso.")
}
