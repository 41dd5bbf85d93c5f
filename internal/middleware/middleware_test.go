package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestTenantMiddleware(t *testing.T) {
	mw := TenantMiddleware(testSecret)

	t.Run("Missing Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"missing bearer token"}`, w.Body.String())
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{
			"tenant_id": float64(42),
			"sub":       "ops@shop",
			"exp":       time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := utils.GetTenantIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, int64(42), tenantID)
			assert.Equal(t, "ops@shop", utils.GetActorFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		mw(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("String Tenant Without Subject", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{"tenant_id": "7"}, testSecret)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, _ := utils.GetTenantIDFromContext(r.Context())
			assert.Equal(t, int64(7), tenantID)
			assert.Equal(t, "tenant:7", utils.GetActorFromContext(r.Context()))
		})

		mw(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{
			"tenant_id": float64(1),
			"exp":       time.Now().Add(-time.Hour).Unix(),
		}, testSecret)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{"tenant_id": float64(1)}, []byte("other"))

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("No Tenant Claim", func(t *testing.T) {
		tokenString := signToken(t, jwt.MapClaims{"sub": "someone"}, testSecret)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid tenant")
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("StrictTierForCheckout", func(t *testing.T) {
		handler := NewRateLimiter().Middleware(ok)
		ctx := utils.SetTenantContext(context.Background(), 3, "a")

		codes := map[int]int{}
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil).WithContext(ctx)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes[w.Code]++
		}

		assert.Equal(t, burstStrict, codes[http.StatusOK])
		assert.Equal(t, 1, codes[http.StatusTooManyRequests])
	})

	t.Run("TenantsHaveSeparateBuckets", func(t *testing.T) {
		handler := NewRateLimiter().Middleware(ok)

		for i := 0; i < burstStrict; i++ {
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil).
				WithContext(utils.SetTenantContext(context.Background(), 1, "a"))
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest(http.MethodPost, "/checkout", nil).
			WithContext(utils.SetTenantContext(context.Background(), 2, "b"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GeneralTierFallsBackToIP", func(t *testing.T) {
		limit, burst, tier := resolveRateTier(httptest.NewRequest(http.MethodGet, "/orders", nil))
		assert.Equal(t, limitGeneral, limit)
		assert.Equal(t, burstGeneral, burst)
		assert.Equal(t, "general", tier)

		l := NewRateLimiter()
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		l.Middleware(ok).ServeHTTP(httptest.NewRecorder(), req)

		_, exists := l.visitors["ip:10.0.0.1:general"]
		assert.True(t, exists)
	})

	t.Run("EvictsIdleVisitors", func(t *testing.T) {
		l := NewRateLimiter()
		l.getVisitor("ip:1:general", limitGeneral, burstGeneral)

		l.evict(time.Now().Add(visitorTTL + time.Second))

		assert.Empty(t, l.visitors)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test")
	handler := Metrics(m, "get_order", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/orders/x", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("get_order", http.StatusText(http.StatusNotFound))))
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
