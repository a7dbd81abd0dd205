package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/clock"
	"lxtrip/holdbroker/internal/config"
	"lxtrip/holdbroker/internal/repository"
	"lxtrip/holdbroker/internal/service"
	jwtpkg "lxtrip/holdbroker/pkg/jwt"
)

const testAdminID = "admin-1"

type testServer struct {
	router *gin.Engine
	clock  *clock.Manual
	jwt    *jwtpkg.Manager
}

func newTestServer(t *testing.T, offers service.OfferGateway) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
		Admin: config.AdminConfig{UserIDs: []string{testAdminID}},
	}
	logger := zap.NewNop()
	clk := clock.NewManual(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	store := repository.NewMemoryStateStore(clk, logger)
	holds := service.NewHoldService(store, clk, logger, service.WithHoldTTL(600*time.Second))
	jwtManager := jwtpkg.NewManager("test-secret", "holdbroker")

	var offerHandler *OfferHandler
	if offers != nil {
		offerHandler = NewOfferHandler(offers, logger)
	}

	router := SetupRouter(cfg, logger, jwtManager,
		NewHoldHandler(holds, logger),
		offerHandler,
		NewAdminHandler(holds, logger),
		func() string { return repository.BackendMemory },
	)
	return &testServer{router: router, clock: clk, jwt: jwtManager}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHoldRoutes_CreateConfirmScenario(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/holds", map[string]any{"offerId": "OFR1", "supplierPrice": 100}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	assert.EqualValues(t, 115, created["total"])
	assert.EqualValues(t, 600, created["expiresIn"])
	holdID, _ := created["holdId"].(string)
	require.NotEmpty(t, holdID)

	w = s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"holdId": holdID, "paymentReference": "pay_1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decode(t, w)
	assert.Equal(t, true, confirmed["success"])
	assert.Regexp(t, `^LXT-\d{6}$`, confirmed["bookingRef"])

	w = s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"holdId": holdID, "paymentReference": "pay_1"}, "")
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestHoldRoutes_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing offer", map[string]any{"supplierPrice": 10}},
		{"missing price", map[string]any{"offerId": "OFR1"}},
		{"price not a number", `{"offerId":"OFR1","supplierPrice":"ten"}`},
		{"negative price", map[string]any{"offerId": "OFR1", "supplierPrice": -5}},
		{"malformed json", `{"offerId":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/holds", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.EqualValues(t, 400, decode(t, w)["code"])
		})
	}
}

func TestHoldRoutes_ConfirmFailures(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"holdId": "abc"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"paymentReference": "pay"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown hold", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"holdId": "nope", "paymentReference": "pay"}, "")
		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("expired hold", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/holds", map[string]any{"offerId": "OFR1", "supplierPrice": 10}, "")
		require.Equal(t, http.StatusOK, w.Code)
		holdID := decode(t, w)["holdId"]

		s.clock.Advance(601 * time.Second)
		w = s.do(t, http.MethodPost, "/api/v1/holds/confirm", map[string]any{"holdId": holdID, "paymentReference": "pay"}, "")
		assert.Equal(t, http.StatusGone, w.Code)
	})
}

func TestHoldRoutes_BearerTokenSuppliesUserID(t *testing.T) {
	s := newTestServer(t, nil)

	userToken, err := s.jwt.GenerateToken("traveller-7", time.Minute)
	require.NoError(t, err)
	adminToken, err := s.jwt.GenerateToken(testAdminID, time.Minute)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/v1/holds", map[string]any{"offerId": "OFR1", "supplierPrice": 10}, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	holdID := decode(t, w)["holdId"].(string)

	w = s.do(t, http.MethodGet, "/api/v1/admin/holds/"+holdID, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	hold := decode(t, w)
	assert.Equal(t, "traveller-7", hold["userId"])
	assert.Equal(t, "HELD", hold["status"])

	t.Run("invalid token is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/holds", map[string]any{"offerId": "OFR1", "supplierPrice": 10}, "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin route requires admin", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/holds/"+holdID, nil, userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/admin/holds/"+holdID, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin lookup of missing hold", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/holds/missing", nil, adminToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", decode(t, w)["store"])
}
