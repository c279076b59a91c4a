package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type fakeGateway struct {
	checkout CheckoutRequest
	payments map[int]*Payment
}

func (f *fakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	f.checkout = req
	return &Checkout{PreferenceID: "pref-1", InitPoint: "https://mp.example/checkout"}, nil
}

func (f *fakeGateway) GetPayment(_ context.Context, id int) (*Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

type fakeSubs struct {
	calls [][2]uint
}

func (f *fakeSubs) MarkPaid(_ context.Context, salonID uint, paymentID uint) (*models.Salon, error) {
	f.calls = append(f.calls, [2]uint{salonID, paymentID})
	return &models.Salon{ID: salonID}, nil
}

func newTestService() (*Service, *fakeGateway, *fakeSubs) {
	gw := &fakeGateway{payments: map[int]*Payment{
		10: {ID: 10, Status: "approved", ExternalReference: "7"},
		11: {ID: 11, Status: "pending", ExternalReference: "7"},
		12: {ID: 12, Status: "approved", ExternalReference: "abc"},
	}}
	subs := &fakeSubs{}
	svc := NewService(gw, subs, decimal.RequireFromString("49.90"), "https://app/back", "https://api/hook", zap.NewNop())
	return svc, gw, subs
}

func TestCheckout(t *testing.T) {
	svc, gw, _ := newTestService()

	out, err := svc.Checkout(context.Background(), &models.Salon{ID: 7, Name: "Bella", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://mp.example/checkout", out.InitPoint)
	assert.Equal(t, uint(7), gw.checkout.SalonID)
	assert.Equal(t, "49.9", gw.checkout.Amount.String())
	assert.Equal(t, "https://api/hook", gw.checkout.NotificationURL)
}

func TestHandleNotification(t *testing.T) {
	svc, _, subs := newTestService()
	ctx := context.Background()

	ok, err := svc.HandleNotification(ctx, Notification{Type: "payment", DataID: "10"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [][2]uint{{7, 10}}, subs.calls)

	ok, err = svc.HandleNotification(ctx, Notification{Type: "payment", DataID: "11"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HandleNotification(ctx, Notification{Type: "payment", DataID: "12"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HandleNotification(ctx, Notification{Type: "merchant_order", DataID: "10"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.HandleNotification(ctx, Notification{Type: "payment", DataID: "x"})
	assert.True(t, httperr.IsBusiness(err, "invalid_request"))

	_, err = svc.HandleNotification(ctx, Notification{Type: "payment", DataID: "99"})
	assert.Error(t, err)

	assert.Len(t, subs.calls, 1)
}

func TestUnconfiguredGateway(t *testing.T) {
	svc := NewService(nil, &fakeSubs{}, decimal.Zero, "", "", zap.NewNop())
	_, err := svc.Checkout(context.Background(), &models.Salon{ID: 1})
	assert.True(t, httperr.IsBusiness(err, "billing_unavailable"))
}
