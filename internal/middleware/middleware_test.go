package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httperr.HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthAndRequireRole(t *testing.T) {
	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager("secret", "HS256", time.Hour, 24*time.Hour)
	svc := auth.NewService(db, tokens, auth.NewBlacklist(db, cache.NewMemory()))

	salon := testutil.Salon(t, db, "Salon A")
	client := testutil.Client(t, db, salon.ID, "Maria", "11999999999", 0)

	r := gin.New()
	r.GET("/owner", Auth(svc), RequireRole(models.RoleOwner), func(c *gin.Context) {
		id := Identity(c)
		c.JSON(http.StatusOK, gin.H{"salon_id": id.SalonID, "uid": c.GetUint(ContextUserID)})
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/owner", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing_authorization_header", errorCode(t, w))

	w = do("Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_authorization_header", errorCode(t, w))

	w = do("Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", errorCode(t, w))

	ownerToken, err := tokens.IssueAccess(salon.ID, models.RoleOwner, salon.ID)
	require.NoError(t, err)
	w = do("Bearer " + ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"salon_id":`+jsonUint(salon.ID)+`,"uid":`+jsonUint(salon.ID)+`}`, w.Body.String())

	clientToken, err := tokens.IssueAccess(client.ID, models.RoleClient, salon.ID)
	require.NoError(t, err)
	w = do("bearer " + clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden_role", errorCode(t, w))

	require.NoError(t, auth.NewBlacklist(db, nil).Revoke(context.Background(), ownerToken, time.Now().Add(time.Hour)))
	w = do("Bearer " + ownerToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_revoked", errorCode(t, w))
}

func jsonUint(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", func(c *gin.Context) { httperr.Respond(c, assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", errorCode(t, w))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var sawError bool
	for _, e := range logs.All() {
		if e.Level == zapcore.ErrorLevel && bytes.Contains([]byte(e.Message), []byte(assert.AnError.Error())) {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
