package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID  uint
	Role    string
	SalonID uint

	Salon  *models.Salon
	Client *models.Client

	Token     string
	ExpiresAt time.Time
}

func (i *Identity) IsAdmin() bool  { return i.Role == models.RoleAdmin }
func (i *Identity) IsOwner() bool  { return i.Role == models.RoleOwner }
func (i *Identity) IsClient() bool { return i.Role == models.RoleClient }

// Name is the display name of the caller.
func (i *Identity) Name() string {
	if i.Client != nil {
		return i.Client.Name
	}
	if i.Salon != nil {
		return i.Salon.Name
	}
	return ""
}

type Service struct {
	db        *gorm.DB
	tokens    *TokenManager
	blacklist *Blacklist
}

func NewService(db *gorm.DB, tokens *TokenManager, blacklist *Blacklist) *Service {
	return &Service{db: db, tokens: tokens, blacklist: blacklist}
}

func (s *Service) Tokens() *TokenManager { return s.tokens }

// ======================================================
// Login
// ======================================================

type LoginResult struct {
	Identity *Identity
	Tokens   *TokenPair
}

// Login checks the credentials against salon accounts first and then
// client accounts. Unknown email and wrong password fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	id, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, id); err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(id.UserID, id.Role, id.SalonID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Identity: id, Tokens: pair}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*Identity, error) {
	var salon models.Salon
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&salon).Error
	switch {
	case err == nil:
		if !CheckPassword(salon.PasswordHash, password) {
			return nil, httperr.ErrUnauthorized("invalid_credentials")
		}
		return salonIdentity(&salon), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var clients []models.Client
	if err := s.db.WithContext(ctx).
		Where("email = ? AND password_hash IS NOT NULL", email).
		Order("id ASC").
		Find(&clients).Error; err != nil {
		return nil, err
	}

	if len(clients) == 0 {
		dummyCompare(password)
		return nil, httperr.ErrUnauthorized("invalid_credentials")
	}

	for i := range clients {
		c := &clients[i]
		if c.HasLogin() && CheckPassword(*c.PasswordHash, password) {
			return clientIdentity(c), nil
		}
	}

	return nil, httperr.ErrUnauthorized("invalid_credentials")
}

// gate applies the account status rules shared by login and every request.
func (s *Service) gate(ctx context.Context, id *Identity) error {
	salon := id.Salon
	if salon == nil {
		var owner models.Salon
		if err := s.db.WithContext(ctx).First(&owner, id.SalonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrUnauthorized("user_not_found")
			}
			return err
		}
		salon = &owner
	}

	if !salon.Active {
		return httperr.ErrForbidden("salon_inactive")
	}
	if id.IsOwner() && !salon.SubscriptionPaid {
		return httperr.ErrForbidden("subscription_pending")
	}
	return nil
}

// ======================================================
// Request authentication
// ======================================================

// Resolve validates an access token and loads the caller from the table
// named by its role claim. A miss there is a failure; roles are never
// guessed from the other table.
func (s *Service) Resolve(ctx context.Context, raw string) (*Identity, error) {
	claims, err := s.tokens.Parse(raw, TokenAccess)
	if err != nil {
		return nil, httperr.ErrUnauthorized("invalid_token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, httperr.ErrUnauthorized("token_revoked")
	}

	id, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}

	if !id.Salon.Active {
		return nil, httperr.ErrForbidden("salon_inactive")
	}

	id.Token = raw
	id.ExpiresAt = claims.ExpiresAt.Time
	return id, nil
}

func (s *Service) load(ctx context.Context, claims *Claims) (*Identity, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, httperr.ErrUnauthorized("invalid_token")
	}

	switch claims.Role {
	case models.RoleOwner, models.RoleAdmin:
		var salon models.Salon
		if err := s.db.WithContext(ctx).First(&salon, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrUnauthorized("user_not_found")
			}
			return nil, err
		}
		if salon.Role() != claims.Role {
			return nil, httperr.ErrUnauthorized("invalid_token")
		}
		return salonIdentity(&salon), nil

	case models.RoleClient:
		var client models.Client
		if err := s.db.WithContext(ctx).First(&client, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrUnauthorized("user_not_found")
			}
			return nil, err
		}
		if client.SalonID != claims.SalonID {
			return nil, httperr.ErrUnauthorized("invalid_token")
		}

		var salon models.Salon
		if err := s.db.WithContext(ctx).First(&salon, client.SalonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrUnauthorized("user_not_found")
			}
			return nil, err
		}

		id := clientIdentity(&client)
		id.Salon = &salon
		return id, nil
	}

	return nil, httperr.ErrUnauthorized("invalid_token")
}

// ======================================================
// Refresh / Logout
// ======================================================

func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	claims, err := s.tokens.Parse(raw, TokenRefresh)
	if err != nil {
		return "", httperr.ErrUnauthorized("invalid_token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, raw)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", httperr.ErrUnauthorized("token_revoked")
	}

	id, err := s.load(ctx, claims)
	if err != nil {
		return "", err
	}
	if err := s.gate(ctx, id); err != nil {
		return "", err
	}

	return s.tokens.IssueAccess(id.UserID, id.Role, id.SalonID)
}

// Logout revokes the access token and, when given, its refresh token.
func (s *Service) Logout(ctx context.Context, id *Identity, refreshToken string) error {
	if err := s.blacklist.Revoke(ctx, id.Token, id.ExpiresAt); err != nil {
		return err
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, refreshToken, claims.ExpiresAt.Time)
}

// ======================================================
// Password change
// ======================================================

func (s *Service) ChangePassword(ctx context.Context, id *Identity, current, next string) error {
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}

	if id.Client != nil {
		if !id.Client.HasLogin() || !CheckPassword(*id.Client.PasswordHash, current) {
			return httperr.ErrValidation("wrong_password")
		}
		return s.db.WithContext(ctx).
			Model(&models.Client{}).
			Where("id = ?", id.Client.ID).
			Update("password_hash", hash).Error
	}

	if !CheckPassword(id.Salon.PasswordHash, current) {
		return httperr.ErrValidation("wrong_password")
	}
	return s.db.WithContext(ctx).
		Model(&models.Salon{}).
		Where("id = ?", id.Salon.ID).
		Updates(map[string]any{
			"password_hash":     hash,
			"has_temp_password": false,
			"is_first_login":    false,
		}).Error
}

func salonIdentity(s *models.Salon) *Identity {
	return &Identity{
		UserID:  s.ID,
		Role:    s.Role(),
		SalonID: s.ID,
		Salon:   s,
	}
}

func clientIdentity(c *models.Client) *Identity {
	return &Identity{
		UserID:  c.ID,
		Role:    models.RoleClient,
		SalonID: c.SalonID,
		Client:  c,
	}
}
