// Package salon holds tenant account operations: admin provisioning,
// subscription management, the owner profile and the public directory.
package salon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

const (
	// SubscriptionPeriod is both the trial length and one paid cycle.
	SubscriptionPeriod = 30 * 24 * time.Hour

	generatedEmailDomain = "salon.temp"
	publicCacheKey       = "public:salons"
	defaultShareBaseURL  = "http://localhost:8000"
	publicCacheTTL       = 5 * time.Minute
)

type Service struct {
	db    *gorm.DB
	cache cache.Cache
	clock timezone.Clock
	log   *zap.Logger

	// CheckEmailDomain enables the MX lookup on registration.
	CheckEmailDomain bool
	// Resolver defaults to net.DefaultResolver.
	Resolver validators.Resolver
	// ShareBaseURL prefixes owner share links.
	ShareBaseURL string
}

func NewService(db *gorm.DB, c cache.Cache, clock timezone.Clock, log *zap.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, cache: c, clock: clock, log: log}
}

func (s *Service) dueIn(period time.Duration) *datatypes.Date {
	d := datatypes.Date(timezone.StartOfDay(s.clock.Now()).Add(period))
	return &d
}

// --------------------------------------------------
// Self registration
// --------------------------------------------------

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Address     string
	Description string
}

// Register creates an owner account with a trial subscription and the
// default business hours.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Salon, error) {
	email := validators.NormalizeEmail(in.Email)
	if s.CheckEmailDomain {
		if err := validators.CheckEmailDomain(ctx, s.Resolver, email); err != nil {
			s.log.Info("registration email rejected", zap.String("email", email), zap.Error(err))
			if errors.Is(err, validators.ErrEmailMalformed) {
				return nil, httperr.ErrValidation("invalid_email")
			}
			return nil, httperr.ErrValidation("invalid_email_domain")
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	salon := &models.Salon{
		Name:                strings.TrimSpace(in.Name),
		Email:               email,
		PasswordHash:        hash,
		Phone:               in.Phone,
		Address:             in.Address,
		Description:         in.Description,
		Active:              true,
		SubscriptionPaid:    true,
		SubscriptionDueDate: s.dueIn(SubscriptionPeriod),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createSalon(tx, salon); err != nil {
			return err
		}
		return audit.LogTx(tx, audit.Event{
			Action:   "salon_registered",
			ActorID:  &salon.ID,
			SalonID:  &salon.ID,
			Entity:   "salon",
			EntityID: &salon.ID,
			Details:  fmt.Sprintf("Salão %s registrado", salon.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublic(ctx)
	return salon, nil
}

// --------------------------------------------------
// Admin provisioning
// --------------------------------------------------

type ProvisionInput struct {
	AdminID     uint
	Name        string
	Email       string
	Phone       string
	Address     string
	Description string
	IP          string
}

type ProvisionResult struct {
	Salon        *models.Salon
	TempPassword string
}

// Provision creates an owner account on behalf of an admin. The temporary
// password is returned once and never stored in clear.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*ProvisionResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, httperr.ErrValidation("invalid_request")
	}

	email := validators.NormalizeEmail(in.Email)
	if email == "" {
		email = GenerateEmail(name)
	}

	temp, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return nil, err
	}

	salon := &models.Salon{
		Name:                name,
		Email:               email,
		PasswordHash:        hash,
		Phone:               in.Phone,
		Address:             in.Address,
		Description:         in.Description,
		Active:              true,
		SubscriptionPaid:    false,
		SubscriptionDueDate: s.dueIn(SubscriptionPeriod),
		HasTempPassword:     true,
		IsFirstLogin:        true,
		CreatedByID:         &in.AdminID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createSalon(tx, salon); err != nil {
			return err
		}
		return audit.LogTx(tx, audit.Event{
			Action:   "salon_created",
			ActorID:  &in.AdminID,
			SalonID:  &salon.ID,
			Entity:   "salon",
			EntityID: &salon.ID,
			Details:  fmt.Sprintf("Salão %s criado com email %s", salon.Name, salon.Email),
			IP:       in.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("salon provisioned",
		zap.Uint("salon_id", salon.ID),
		zap.Uint("admin_id", in.AdminID),
	)
	s.invalidatePublic(ctx)

	return &ProvisionResult{Salon: salon, TempPassword: temp}, nil
}

// GenerateEmail derives a placeholder login from the salon name.
func GenerateEmail(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("salon")
	}
	return b.String() + "@" + generatedEmailDomain
}

func createSalon(tx *gorm.DB, salon *models.Salon) error {
	var count int64
	if err := tx.Model(&models.Salon{}).
		Where("email = ?", salon.Email).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return httperr.ErrConflict("email_already_exists")
	}

	if err := tx.Create(salon).Error; err != nil {
		if httperr.IsUniqueViolation(err, "") {
			return httperr.ErrConflict("email_already_exists")
		}
		return err
	}

	hours := models.DefaultBusinessHours(salon.ID)
	return tx.Create(hours).Error
}

// --------------------------------------------------
// Subscription and status
// --------------------------------------------------

type SubscriptionInput struct {
	AdminID uint
	SalonID uint
	Paid    bool
	DueDate *time.Time
	IP      string
}

func (s *Service) UpdateSubscription(ctx context.Context, in SubscriptionInput) (*models.Salon, error) {
	var salon models.Salon

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwner(tx, in.SalonID, &salon); err != nil {
			return err
		}

		salon.SubscriptionPaid = in.Paid
		if in.DueDate != nil {
			d := datatypes.Date(*in.DueDate)
			salon.SubscriptionDueDate = &d
		}

		if err := tx.Model(&salon).Updates(map[string]any{
			"subscription_paid":     salon.SubscriptionPaid,
			"subscription_due_date": salon.SubscriptionDueDate,
		}).Error; err != nil {
			return err
		}

		return audit.LogTx(tx, audit.Event{
			Action:   "subscription_updated",
			ActorID:  &in.AdminID,
			SalonID:  &salon.ID,
			Entity:   "salon",
			EntityID: &salon.ID,
			Details:  fmt.Sprintf("Mensalidade do salão %s: pago=%t", salon.Name, salon.SubscriptionPaid),
			IP:       in.IP,
		})
	})
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

type StatusInput struct {
	AdminID uint
	SalonID uint
	Active  bool
	IP      string
}

func (s *Service) SetStatus(ctx context.Context, in StatusInput) (*models.Salon, error) {
	var salon models.Salon

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwner(tx, in.SalonID, &salon); err != nil {
			return err
		}

		salon.Active = in.Active
		if err := tx.Model(&salon).Update("active", in.Active).Error; err != nil {
			return err
		}

		return audit.LogTx(tx, audit.Event{
			Action:   "salon_status_changed",
			ActorID:  &in.AdminID,
			SalonID:  &salon.ID,
			Entity:   "salon",
			EntityID: &salon.ID,
			Details:  fmt.Sprintf("Salão %s ativo=%t", salon.Name, in.Active),
			IP:       in.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublic(ctx)
	return &salon, nil
}

// MarkPaid settles one cycle: the due date moves SubscriptionPeriod past
// the later of today and the current due date. A payment already applied
// leaves the account untouched.
func (s *Service) MarkPaid(ctx context.Context, salonID uint, paymentID uint) (*models.Salon, error) {
	var salon models.Salon

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwner(tx, salonID, &salon); err != nil {
			return err
		}

		var seen int64
		if err := tx.Model(&models.AuditLog{}).
			Where("action = ? AND entity = ? AND entity_id = ?", "subscription_paid", "payment", paymentID).
			Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return nil
		}

		base := timezone.StartOfDay(s.clock.Now())
		if salon.SubscriptionDueDate != nil {
			if cur := time.Time(*salon.SubscriptionDueDate); cur.After(base) {
				base = cur
			}
		}
		due := datatypes.Date(base.Add(SubscriptionPeriod))
		salon.SubscriptionPaid = true
		salon.SubscriptionDueDate = &due

		if err := tx.Model(&salon).Updates(map[string]any{
			"subscription_paid":     true,
			"subscription_due_date": &due,
		}).Error; err != nil {
			return err
		}

		return audit.LogTx(tx, audit.Event{
			Action:   "subscription_paid",
			SalonID:  &salon.ID,
			Entity:   "payment",
			EntityID: &paymentID,
			Details:  fmt.Sprintf("Pagamento %d confirmado para %s", paymentID, salon.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

// MarkOverdue flips paid subscriptions whose due date has passed.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	today := datatypes.Date(timezone.StartOfDay(s.clock.Now()))

	res := s.db.WithContext(ctx).
		Model(&models.Salon{}).
		Where("is_admin = ? AND subscription_paid = ?", false, true).
		Where("subscription_due_date IS NOT NULL AND subscription_due_date < ?", today).
		Update("subscription_paid", false)
	return res.RowsAffected, res.Error
}

type SubscriptionView struct {
	ID                  uint            `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Active              bool            `json:"active"`
	SubscriptionPaid    bool            `json:"subscription_paid"`
	SubscriptionDueDate *datatypes.Date `json:"subscription_due_date"`
	Overdue             bool            `json:"overdue"`
	HasTempPassword     bool            `json:"has_temp_password"`
	CreatedAt           time.Time       `json:"created_at"`
}

func (s *Service) ListSubscriptions(ctx context.Context) ([]SubscriptionView, error) {
	owners, err := s.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	today := timezone.StartOfDay(s.clock.Now())
	out := make([]SubscriptionView, len(owners))
	for i, o := range owners {
		out[i] = SubscriptionView{
			ID:                  o.ID,
			Name:                o.Name,
			Email:               o.Email,
			Active:              o.Active,
			SubscriptionPaid:    o.SubscriptionPaid,
			SubscriptionDueDate: o.SubscriptionDueDate,
			Overdue: o.SubscriptionDueDate != nil &&
				time.Time(*o.SubscriptionDueDate).Before(today),
			HasTempPassword: o.HasTempPassword,
			CreatedAt:       o.CreatedAt,
		}
	}
	return out, nil
}

func (s *Service) ListOwners(ctx context.Context) ([]models.Salon, error) {
	owners := []models.Salon{}
	err := s.db.WithContext(ctx).
		Where("is_admin = ?", false).
		Order("created_at DESC").
		Find(&owners).Error
	return owners, err
}

// --------------------------------------------------
// Owner profile
// --------------------------------------------------

func (s *Service) Get(ctx context.Context, salonID uint) (*models.Salon, error) {
	var salon models.Salon
	if err := s.db.WithContext(ctx).First(&salon, salonID).Error; err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("salon_not_found")
		}
		return nil, err
	}
	return &salon, nil
}

type ProfileInput struct {
	Name        *string
	Phone       *string
	Address     *string
	Description *string
}

func (in ProfileInput) updates() (map[string]any, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, httperr.ErrValidation("invalid_request")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	return updates, nil
}

type AppearanceInput struct {
	PrimaryColor    *string
	SecondaryColor  *string
	CardDescription *string
}

func (in AppearanceInput) updates() map[string]any {
	updates := map[string]any{}
	if in.PrimaryColor != nil {
		updates["primary_color"] = *in.PrimaryColor
	}
	if in.SecondaryColor != nil {
		updates["secondary_color"] = *in.SecondaryColor
	}
	if in.CardDescription != nil {
		updates["card_description"] = *in.CardDescription
	}
	return updates
}

// editor is who signs the audit row of a profile change.
type editor struct {
	id uint
	ip string
}

func (s *Service) UpdateProfile(ctx context.Context, salonID uint, in ProfileInput) (*models.Salon, error) {
	updates, err := in.updates()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, salonID, editor{id: salonID}, "salon_updated", updates)
}

func (s *Service) UpdateAppearance(ctx context.Context, salonID uint, in AppearanceInput) (*models.Salon, error) {
	return s.update(ctx, salonID, editor{id: salonID}, "salon_appearance_updated", in.updates())
}

func (s *Service) SetLogo(ctx context.Context, salonID uint, url string) (*models.Salon, error) {
	return s.update(ctx, salonID, editor{id: salonID}, "salon_logo_updated", map[string]any{"logo_url": url})
}

// --------------------------------------------------
// Admin company management
// --------------------------------------------------

// Company returns an owner account in full for the admin screens.
func (s *Service) Company(ctx context.Context, salonID uint) (*models.Salon, error) {
	var salon models.Salon
	if err := findOwner(s.db.WithContext(ctx), salonID, &salon); err != nil {
		return nil, err
	}
	return &salon, nil
}

// AdminEdit identifies an admin changing another salon's profile.
type AdminEdit struct {
	AdminID uint
	SalonID uint
	IP      string
}

func (e AdminEdit) editor() editor { return editor{id: e.AdminID, ip: e.IP} }

func (s *Service) AdminUpdateProfile(ctx context.Context, e AdminEdit, in ProfileInput) (*models.Salon, error) {
	updates, err := in.updates()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, e.SalonID, e.editor(), "admin_salon_updated", updates)
}

func (s *Service) AdminUpdateAppearance(ctx context.Context, e AdminEdit, in AppearanceInput) (*models.Salon, error) {
	return s.update(ctx, e.SalonID, e.editor(), "admin_salon_appearance_updated", in.updates())
}

func (s *Service) AdminSetLogo(ctx context.Context, e AdminEdit, url string) (*models.Salon, error) {
	return s.update(ctx, e.SalonID, e.editor(), "admin_salon_logo_updated", map[string]any{"logo_url": url})
}

type OwnerInfoInput struct {
	OwnerName *string
	Email     *string
	Phone     *string
}

// UpdateOwnerInfo changes the login email and contact of an owner. The new
// email must be free across all accounts.
func (s *Service) UpdateOwnerInfo(ctx context.Context, e AdminEdit, in OwnerInfoInput) (*models.Salon, error) {
	updates := map[string]any{}
	if in.OwnerName != nil {
		updates["owner_name"] = strings.TrimSpace(*in.OwnerName)
	}
	if in.Email != nil {
		email := validators.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, httperr.ErrValidation("invalid_request")
		}
		updates["email"] = email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	return s.update(ctx, e.SalonID, e.editor(), "admin_salon_owner_updated", updates)
}

func (s *Service) update(
	ctx context.Context,
	salonID uint,
	by editor,
	action string,
	updates map[string]any,
) (*models.Salon, error) {

	var salon models.Salon

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwner(tx, salonID, &salon); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		if email, ok := updates["email"]; ok {
			var n int64
			if err := tx.Model(&models.Salon{}).
				Where("email = ? AND id <> ?", email, salonID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return httperr.ErrConflict("email_already_exists")
			}
		}

		if err := tx.Model(&salon).Updates(updates).Error; err != nil {
			if httperr.IsUniqueViolation(err, "") {
				return httperr.ErrConflict("email_already_exists")
			}
			return err
		}

		fields := make([]string, 0, len(updates))
		for k := range updates {
			fields = append(fields, k)
		}
		sort.Strings(fields)

		return audit.LogTx(tx, audit.Event{
			Action:   action,
			ActorID:  &by.id,
			SalonID:  &salon.ID,
			Entity:   "salon",
			EntityID: &salon.ID,
			Details:  "Campos alterados: " + strings.Join(fields, ", "),
			IP:       by.ip,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublic(ctx)
	return &salon, nil
}

// --------------------------------------------------
// Share link
// --------------------------------------------------

type ShareLink struct {
	SalonID   uint   `json:"salon_id"`
	SalonName string `json:"salon_name"`
	ShareLink string `json:"share_link"`
	Active    bool   `json:"active"`
}

// ShareLink builds the public booking link an owner hands to clients. It
// does not expire.
func (s *Service) ShareLink(ctx context.Context, ownerID, salonID uint) (*ShareLink, error) {
	if ownerID != salonID {
		return nil, httperr.ErrForbidden("forbidden_salon")
	}

	var salon models.Salon
	if err := findOwner(s.db.WithContext(ctx), salonID, &salon); err != nil {
		return nil, err
	}
	if !salon.Active {
		return nil, httperr.ErrForbidden("salon_inactive")
	}

	base := s.ShareBaseURL
	if base == "" {
		base = defaultShareBaseURL
	}

	return &ShareLink{
		SalonID:   salon.ID,
		SalonName: salon.Name,
		ShareLink: fmt.Sprintf("%s/salon-selection.html?salon=%d", strings.TrimRight(base, "/"), salon.ID),
		Active:    salon.Active,
	}, nil
}

func findOwner(tx *gorm.DB, salonID uint, out *models.Salon) error {
	err := tx.Where("id = ? AND is_admin = ?", salonID, false).First(out).Error
	if httperr.IsNotFound(err) {
		return httperr.ErrNotFound("salon_not_found")
	}
	return err
}

// --------------------------------------------------
// Public directory
// --------------------------------------------------

type PublicSalon struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Description     string `json:"description"`
	LogoURL         string `json:"logo_url"`
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	CardDescription string `json:"card_description"`
}

func toPublic(s *models.Salon) PublicSalon {
	return PublicSalon{
		ID:              s.ID,
		Name:            s.Name,
		Phone:           s.Phone,
		Address:         s.Address,
		Description:     s.Description,
		LogoURL:         s.LogoURL,
		PrimaryColor:    s.PrimaryColor,
		SecondaryColor:  s.SecondaryColor,
		CardDescription: s.CardDescription,
	}
}

// ListPublic returns active owner accounts ordered by name. The result is
// cached briefly and dropped on every profile or status change.
func (s *Service) ListPublic(ctx context.Context) ([]PublicSalon, error) {
	if raw, err := s.cache.Get(ctx, publicCacheKey); err == nil {
		var out []PublicSalon
		if json.Unmarshal([]byte(raw), &out) == nil {
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("public salons cache read failed", zap.Error(err))
	}

	var salons []models.Salon
	if err := s.db.WithContext(ctx).
		Where("active = ? AND is_admin = ?", true, false).
		Order("name ASC").
		Find(&salons).Error; err != nil {
		return nil, err
	}

	out := make([]PublicSalon, len(salons))
	for i := range salons {
		out[i] = toPublic(&salons[i])
	}

	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, publicCacheKey, string(b), publicCacheTTL); err != nil {
			s.log.Warn("public salons cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// GetPublic returns an active owner account; inactive and admin accounts
// are reported as missing.
func (s *Service) GetPublic(ctx context.Context, salonID uint) (*PublicSalon, error) {
	var salon models.Salon
	err := s.db.WithContext(ctx).
		Where("id = ? AND active = ? AND is_admin = ?", salonID, true, false).
		First(&salon).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrNotFound("salon_not_found")
		}
		return nil, err
	}
	p := toPublic(&salon)
	return &p, nil
}

func (s *Service) invalidatePublic(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicCacheKey); err != nil {
		s.log.Warn("public salons cache invalidation failed", zap.Error(err))
	}
}

// --------------------------------------------------
// Bootstrap
// --------------------------------------------------

// BootstrapAdmin creates the first admin account when none exists.
// It reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = validators.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Salon{}).
		Where("is_admin = ?", true).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &models.Salon{
		Name:         "Administrador",
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		IsAdmin:      true,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		if httperr.IsUniqueViolation(err, "") {
			return false, httperr.ErrConflict("email_already_exists")
		}
		return false, err
	}

	s.log.Info("admin account created", zap.String("email", email))
	return true, nil
}
