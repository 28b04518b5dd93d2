package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zayana-be/internal/auth"
	"zayana-be/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct {
	claims *auth.Claims
	err    error
}

func (s stubParser) Parse(string) (*auth.Claims, error) {
	return s.claims, s.err
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	valid := stubParser{claims: &auth.Claims{UserID: 7, Email: "a@b.c"}}

	t.Run("Missing Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()

		newAuthRouter(RequireAuth(valid)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_UNAUTHORIZED")
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		newAuthRouter(RequireAuth(stubParser{err: auth.ErrInvalidToken})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()

		newAuthRouter(RequireAuth(valid)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":7,"ok":true}`, w.Body.String())
	})

	t.Run("Cookie Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "good"})
		w := httptest.NewRecorder()

		newAuthRouter(RequireAuth(valid)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Real manager", func(t *testing.T) {
		m, err := auth.NewManager("test-secret", time.Hour)
		require.NoError(t, err)
		tok, err := m.Generate(3, "x@y.z")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()

		newAuthRouter(RequireAuth(m)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":3,"ok":true}`, w.Body.String())
	})
}

func TestOptionalAuth(t *testing.T) {
	t.Run("Anonymous passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()

		newAuthRouter(OptionalAuth(stubParser{err: errors.New("unused")})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
	})

	t.Run("Bad token is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()

		newAuthRouter(OptionalAuth(stubParser{err: auth.ErrInvalidToken})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
	})
}

func TestResolveRateTier(t *testing.T) {
	l := NewLimiter("s3cret", nil)

	cases := []struct {
		name    string
		path    string
		headers map[string]string
		want    string
	}{
		{"Internal", "/api/products", map[string]string{"X-Service-Auth": "s3cret"}, "internal"},
		{"Wrong internal key", "/api/products", map[string]string{"X-Service-Auth": "nope"}, "general"},
		{"Auth path", "/api/auth/login", nil, "strict"},
		{"Auth action", "/api/products", map[string]string{"X-Action": "auth"}, "strict"},
		{"Frontend", "/api/products", map[string]string{"X-Client-Type": "frontend-heavy"}, "frontend"},
		{"Default", "/api/cart", nil, "general"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			_, _, tier := l.resolveRateTier(req)
			assert.Equal(t, tc.want, tier)
		})
	}

	_, _, tier := NewLimiter("", nil).resolveRateTier(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "general", tier)
}

func TestLimiter_Middleware(t *testing.T) {
	reg := metrics.NewRegistry()
	l := NewLimiter("", reg)

	r := gin.New()
	r.Use(l.Middleware())
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(device string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Device-ID", device)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < burstStrict; i++ {
		require.Equal(t, http.StatusOK, hit("d1"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("d1"))
	assert.Equal(t, http.StatusOK, hit("d2"), "separate identity has its own bucket")
	assert.Equal(t, float64(1), reg.Value(metrics.RateLimitedRequest))
}

func TestLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	l := NewLimiter("", nil)
	l.now = func() time.Time { return now }

	l.getVisitor("a", limitGeneral, burstGeneral)
	now = now.Add(visitorTTL + time.Second)
	l.getVisitor("b", limitGeneral, burstGeneral)

	assert.Equal(t, 1, l.cleanup())
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "b")
}
