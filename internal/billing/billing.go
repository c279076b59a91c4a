// Package billing charges the monthly subscription through Mercado Pago.
package billing

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const StatusApproved = "approved"

type CheckoutRequest struct {
	SalonID         uint
	Title           string
	Amount          decimal.Decimal
	PayerEmail      string
	BackURL         string
	NotificationURL string
}

type Checkout struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
}

type Payment struct {
	ID                int
	Status            string
	ExternalReference string
}

// Gateway is the payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	GetPayment(ctx context.Context, id int) (*Payment, error)
}

type Subscriptions interface {
	MarkPaid(ctx context.Context, salonID uint, paymentID uint) (*models.Salon, error)
}

type Service struct {
	gw   Gateway
	subs Subscriptions
	log  *zap.Logger

	price           decimal.Decimal
	backURL         string
	notificationURL string
}

func NewService(
	gw Gateway,
	subs Subscriptions,
	price decimal.Decimal,
	backURL, notificationURL string,
	log *zap.Logger,
) *Service {
	return &Service{
		gw:              gw,
		subs:            subs,
		log:             log,
		price:           price,
		backURL:         backURL,
		notificationURL: notificationURL,
	}
}

func (s *Service) Checkout(ctx context.Context, salon *models.Salon) (*Checkout, error) {
	if s.gw == nil {
		return nil, httperr.ErrBusiness("billing_unavailable")
	}
	return s.gw.CreateCheckout(ctx, CheckoutRequest{
		SalonID:         salon.ID,
		Title:           "Mensalidade - " + salon.Name,
		Amount:          s.price,
		PayerEmail:      salon.Email,
		BackURL:         s.backURL,
		NotificationURL: s.notificationURL,
	})
}

// Notification is the part of a provider callback we act on.
type Notification struct {
	Type   string
	DataID string
}

// HandleNotification looks the payment up at the provider and, when it is
// approved, settles the subscription named by its external reference.
// Other topics and pending payments are acknowledged and ignored.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (bool, error) {
	if s.gw == nil {
		return false, httperr.ErrBusiness("billing_unavailable")
	}
	if n.Type != "payment" {
		return false, nil
	}

	id, err := strconv.Atoi(strings.TrimSpace(n.DataID))
	if err != nil || id <= 0 {
		return false, httperr.ErrValidation("invalid_request")
	}

	p, err := s.gw.GetPayment(ctx, id)
	if err != nil {
		return false, err
	}
	if p.Status != StatusApproved {
		s.log.Info("payment not approved",
			zap.Int("payment_id", p.ID),
			zap.String("status", p.Status),
		)
		return false, nil
	}

	salonID, err := strconv.ParseUint(p.ExternalReference, 10, 64)
	if err != nil {
		s.log.Warn("payment without salon reference",
			zap.Int("payment_id", p.ID),
			zap.String("reference", p.ExternalReference),
		)
		return false, nil
	}

	if _, err := s.subs.MarkPaid(ctx, uint(salonID), uint(p.ID)); err != nil {
		return false, err
	}

	s.log.Info("subscription paid",
		zap.Uint64("salon_id", salonID),
		zap.Int("payment_id", p.ID),
	)
	return true, nil
}
