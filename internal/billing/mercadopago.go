package billing

import (
	"context"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

const currencyBRL = "BRL"

type MercadoPago struct {
	preferences preference.Client
	payments    payment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
	}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	price, _ := req.Amount.Float64()

	pref := preference.Request{
		Items: []preference.ItemRequest{{
			ID:         "subscription",
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  price,
			CurrencyID: currencyBRL,
		}},
		Payer:             &preference.PayerRequest{Email: req.PayerEmail},
		ExternalReference: strconv.FormatUint(uint64(req.SalonID), 10),
		NotificationURL:   req.NotificationURL,
	}
	if req.BackURL != "" {
		pref.BackURLs = &preference.BackURLsRequest{
			Success: req.BackURL,
			Pending: req.BackURL,
			Failure: req.BackURL,
		}
		pref.AutoReturn = "approved"
	}

	res, err := m.preferences.Create(ctx, pref)
	if err != nil {
		return nil, err
	}
	return &Checkout{PreferenceID: res.ID, InitPoint: res.InitPoint}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, id int) (*Payment, error) {
	res, err := m.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Payment{
		ID:                res.ID,
		Status:            res.Status,
		ExternalReference: res.ExternalReference,
	}, nil
}

var _ Gateway = (*MercadoPago)(nil)
