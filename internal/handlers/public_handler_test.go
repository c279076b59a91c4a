package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
)

func TestPublicDirectory(t *testing.T) {
	e := newEnv(t)
	testutil.Admin(t, e.db)

	hidden := &models.Service{SalonID: e.salon.ID, Name: "Antigo", DurationMinutes: 30, Active: false}
	require.NoError(t, e.db.Create(hidden).Error)

	w := e.do(http.MethodGet, "/public/salons", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	salons := decode[list[salon.PublicSalon]](t, w)
	require.Equal(t, 1, salons.Total, "admin accounts are not listed")
	assert.Equal(t, "Salon A", salons.Data[0].Name)
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(http.MethodGet, idPath("/public/salons/%d", e.salon.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, e.salon.ID, decode[salon.PublicSalon](t, w).ID)

	w = e.do(http.MethodGet, idPath("/public/salons/%d/services", e.salon.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	services := decode[list[models.Service]](t, w)
	require.Equal(t, 1, services.Total, "inactive services are hidden")
	assert.Equal(t, "Corte", services.Data[0].Name)

	w = e.do(http.MethodGet, idPath("/public/salons/%d/professionals", e.salon.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[list[models.Professional]](t, w).Total)

	w = e.do(http.MethodGet, idPath("/public/salons/%d/business-hours", e.salon.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.DayHours](t, w), 7)

	w = e.do(http.MethodGet, "/public/salons/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "salon_not_found", errorCode(t, w))

	require.NoError(t, e.db.Model(e.salon).Update("active", false).Error)

	w = e.do(http.MethodGet, idPath("/public/salons/%d/services", e.salon.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "salon_not_found", errorCode(t, w))
}

func TestPublicBooking(t *testing.T) {
	e := newEnv(t)
	booking := idPath("/public/salons/%d/appointments", e.salon.ID)

	w := e.do(http.MethodPost, booking, "", map[string]any{
		"client_name":          "Paula",
		"client_phone":         "(11) 95555-4444",
		"service_id":           e.service.ID,
		"professional_id":      e.pro.ID,
		"appointment_datetime": "2025-09-25T14:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ap := decode[appointmentBody](t, w)
	assert.Equal(t, "Paula", ap.ClientName)
	assert.Equal(t, "scheduled", ap.Status)

	var paula models.Client
	require.NoError(t, e.db.Where("salon_id = ? AND phone = ?", e.salon.ID, "11955554444").First(&paula).Error)
	assert.False(t, paula.HasLogin())

	type slots struct {
		Total int `json:"total"`
		Slots []struct {
			Start string `json:"start"`
		} `json:"slots"`
	}

	w = e.do(http.MethodGet, idPath("/public/salons/%d/professionals/%d/available-times?date=2025-09-25", e.salon.ID, e.pro.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[slots](t, w)
	require.NotZero(t, got.Total)
	for _, s := range got.Slots {
		assert.NotEqual(t, "14:00", s.Start)
	}

	// the same route answers with query parameters too
	w = e.do(http.MethodGet, idPath("/public/salons/%d/availability?date=2025-09-25&professional_id=%d", e.salon.ID, e.pro.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got.Total, decode[slots](t, w).Total)

	w = e.do(http.MethodPost, booking, "", map[string]any{
		"client_name":          "Paula",
		"client_phone":         "11955554444",
		"service_id":           e.service.ID,
		"appointment_datetime": "2025-09-23T14:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "in_the_past", errorCode(t, w))

	w = e.do(http.MethodPost, booking, "", map[string]any{
		"client_name":          "Rita",
		"client_phone":         "11944443333",
		"service_id":           e.service.ID,
		"appointment_datetime": "2025-09-28T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "outside_business_hours", errorCode(t, w))

	w = e.do(http.MethodPost, booking, "", map[string]any{
		"client_name": "Rita",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = e.do(http.MethodGet, "/public/salons/9999/availability", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "salon_not_found", errorCode(t, w))
}

func TestPublicBookingRejectsPhoneWithoutDigits(t *testing.T) {
	e := newEnv(t)
	booking := idPath("/public/salons/%d/appointments", e.salon.ID)

	var before int64
	require.NoError(t, e.db.Model(&models.Client{}).Count(&before).Error)

	for _, phone := range []string{"nao tenho", "---", "+"} {
		w := e.do(http.MethodPost, booking, "", map[string]any{
			"client_name":          "Ana",
			"client_phone":         phone,
			"service_id":           e.service.ID,
			"appointment_datetime": "2025-09-25T14:00:00Z",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, phone)
		assert.Equal(t, "invalid_phone", errorCode(t, w), phone)
	}

	var after int64
	require.NoError(t, e.db.Model(&models.Client{}).Count(&after).Error)
	assert.Equal(t, before, after, "no client row is created")

	// two people with real phones stay separate
	w := e.do(http.MethodPost, booking, "", map[string]any{
		"client_name":          "Ana",
		"client_phone":         "11911112222",
		"service_id":           e.service.ID,
		"appointment_datetime": "2025-09-25T14:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, booking, "", map[string]any{
		"client_name":          "Bruno",
		"client_phone":         "11933334444",
		"service_id":           e.service.ID,
		"appointment_datetime": "2025-09-27T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Bruno", decode[appointmentBody](t, w).ClientName)
}

func TestPublicClientRegisterRejectsPhoneWithoutDigits(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, idPath("/public/salons/%d/clients/register", e.salon.ID), "", map[string]any{
		"name":     "Lia",
		"email":    "lia@example.com",
		"phone":    "---",
		"password": "segredo1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_phone", errorCode(t, w))
}

func TestPublicClientRegister(t *testing.T) {
	e := newEnv(t)
	path := idPath("/public/salons/%d/clients/register", e.salon.ID)

	w := e.do(http.MethodPost, path, "", map[string]any{
		"name":     "Lia",
		"email":    "lia@example.com",
		"phone":    "11933332222",
		"password": "segredo1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[loginBody](t, w)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, models.RoleClient, reg.User.Role)

	w = e.do(http.MethodGet, "/clients/me", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Lia", decode[models.Client](t, w).Name)

	w = e.do(http.MethodPost, path, "", map[string]any{
		"name":     "Lia 2",
		"email":    "LIA@example.com",
		"phone":    "11911110000",
		"password": "segredo1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_already_exists", errorCode(t, w))

	w = e.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "lia@example.com",
		"password": "segredo1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.RoleClient, decode[loginBody](t, w).User.Role)

	w = e.do(http.MethodPost, "/public/salons/9999/clients/register", "", map[string]any{
		"name":     "Lia",
		"email":    "lia2@example.com",
		"phone":    "11933332221",
		"password": "segredo1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
