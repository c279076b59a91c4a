package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/billing"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/report"
	"github.com/BruksfildServices01/salon-scheduler/internal/usecase/salon"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// Wednesday 2025-09-24 10:00 UTC
var testNow = time.Date(2025, 9, 24, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validators.Register(); err != nil {
		panic(err)
	}
}

// --------- Fakes ---------

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key string, body []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeGateway struct {
	payments map[int]*billing.Payment
	checkout []billing.CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req billing.CheckoutRequest) (*billing.Checkout, error) {
	g.checkout = append(g.checkout, req)
	return &billing.Checkout{
		PreferenceID: "pref-1",
		InitPoint:    "https://pay.test/pref-1",
	}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id int) (*billing.Payment, error) {
	p, ok := g.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %d not found", id)
	}
	return p, nil
}

// --------- Environment ---------

type env struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	tokens  *auth.TokenManager
	uploads *fakeUploader
	gateway *fakeGateway

	salon   *models.Salon
	maria   *models.Client
	service *models.Service
	pro     *models.Professional
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	clock := timezone.FixedClock{At: testNow}

	disp := audit.NewDispatcher(audit.New(gdb), zap.NewNop())
	t.Cleanup(disp.Close)

	tokens := auth.NewTokenManager("test-secret", "HS256", time.Hour, 24*time.Hour)
	authSvc := auth.NewService(gdb, tokens, auth.NewBlacklist(gdb, cache.NewMemory()))
	salons := salon.NewService(gdb, cache.NewMemory(), clock, zap.NewNop())

	gw := &fakeGateway{payments: map[int]*billing.Payment{}}
	up := &fakeUploader{}

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:           gdb,
		Config:       &config.Config{CORSOrigins: []string{"*"}},
		Log:          zap.NewNop(),
		Clock:        clock,
		Auth:         authSvc,
		Salons:       salons,
		Reports:      report.NewReports(repository.NewReportGormRepository(gdb), clock),
		Appointments: repository.NewAppointmentGormRepository(gdb),
		Audit:        disp,
		Images:       storage.NewImages(up),
		Billing:      billing.NewService(gw, salons, decimal.NewFromInt(49), "", "", zap.NewNop()),
	})

	e := &env{
		t:       t,
		db:      gdb,
		router:  r,
		tokens:  tokens,
		uploads: up,
		gateway: gw,
	}

	e.salon = testutil.Salon(t, gdb, "Salon A")
	e.maria = testutil.Client(t, gdb, e.salon.ID, "Maria", "11999999999", 5)
	e.service = testutil.Service(t, gdb, e.salon.ID, "Corte", "50.00", 10)
	e.pro = testutil.Professional(t, gdb, e.salon.ID, "Joana")

	return e
}

func (e *env) ownerToken(s *models.Salon) string {
	e.t.Helper()
	tok, err := e.tokens.IssueAccess(s.ID, s.Role(), s.ID)
	require.NoError(e.t, err)
	return tok
}

func (e *env) clientToken(c *models.Client) string {
	e.t.Helper()
	tok, err := e.tokens.IssueAccess(c.ID, models.RoleClient, c.SalonID)
	require.NoError(e.t, err)
	return tok
}

// do sends body as JSON unless it is nil.
func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// upload posts a multipart form with one "file" field.
func (e *env) upload(path, token, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(e.t, err)
	_, err = fw.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[httperr.HTTPError](t, w).Code
}

type list[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func idPath(format string, ids ...uint) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}

// --------- Health / auth ---------

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type loginBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID                 uint   `json:"id"`
		Email              string `json:"email"`
		Role               string `json:"role"`
		MustChangePassword bool   `json:"must_change_password"`
		LoyaltyPoints      *int   `json:"loyalty_points"`
	} `json:"user"`
}

func TestRegisterLoginLogout(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Studio Bela",
		"email":    "bela@example.com",
		"password": "secret123",
		"phone":    "(11) 98888-7777",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[loginBody](t, w)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, models.RoleOwner, reg.User.Role)

	w = e.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Outro",
		"email":    "bela@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_already_exists", errorCode(t, w))

	w = e.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "bela@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, w))

	w = e.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "BELA@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[loginBody](t, w)
	assert.False(t, login.User.MustChangePassword)

	w = e.do(http.MethodGet, "/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bela@example.com", decode[map[string]any](t, w)["email"])

	w = e.do(http.MethodPost, "/auth/refresh", "", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["access_token"])

	w = e.do(http.MethodPost, "/auth/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_revoked", errorCode(t, w))
}

func TestClientLoginAndProfile(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    *e.maria.Email,
		"password": testutil.Password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[loginBody](t, w)
	assert.Equal(t, models.RoleClient, login.User.Role)
	require.NotNil(t, login.User.LoyaltyPoints)
	assert.Equal(t, 5, *login.User.LoyaltyPoints)

	w = e.do(http.MethodPut, "/auth/me", login.AccessToken, map[string]any{"name": "Maria Souza"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Client
	require.NoError(t, e.db.First(&stored, e.maria.ID).Error)
	assert.Equal(t, "Maria Souza", stored.Name)

	w = e.do(http.MethodPost, "/auth/change-password", login.AccessToken, map[string]any{
		"current_password": "bad-one",
		"new_password":     "another123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "wrong_password", errorCode(t, w))
}
