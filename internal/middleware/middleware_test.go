package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/config"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(raw string) (string, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthGate(t *testing.T) {
	e := echo.New()
	calls := 0
	e.POST("/getcart", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, UserID(c))
	}, AuthGate(stubVerifier{"good": "u1"}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"invalid", "garbage", http.StatusUnauthorized},
		{"bearer prefix is not stripped", "Bearer good", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/getcart", nil)
			if tc.header != "" {
				req.Header.Set(TokenHeader, tc.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, `{"errors":"please authenticate using valid token"}`, rec.Body.String())
		})
	}
	assert.Zero(t, calls)

	req := httptest.NewRequest(http.MethodPost, "/getcart", nil)
	req.Header.Set(TokenHeader, "good")
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
	assert.Equal(t, 1, calls)
}

func TestUserID_Unauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "", UserID(c))
	c.Set("user_id", 42)
	assert.Equal(t, "", UserID(c))
}

func TestRequireCatalogKey(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	e := echo.New()
	e.POST("/open", ok, RequireCatalogKey(""))
	e.POST("/guarded", ok, RequireCatalogKey("k3y"))

	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/open", nil)).Code)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "k3")
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "k3y")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1,2]`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `[1,2]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated())
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestResponseCache_DisabledPassesThrough(t *testing.T) {
	log, _ := test.NewNullLogger()
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil, log)

	e := echo.New()
	e.Use(rc.Middleware())
	e.GET("/allproducts", func(c echo.Context) error { return c.JSON(http.StatusOK, []int{1}) })
	e.POST("/addproduct", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, rc.InvalidateOnSuccess())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/allproducts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/addproduct", nil)).Code)
	assert.NoError(t, rc.Purge(context.Background()))
}

func TestResponseCache_KeyUsesConcretePath(t *testing.T) {
	log, _ := test.NewNullLogger()
	rc := NewResponseCache(config.CacheConfig{Prefix: "p"}, nil, log)
	e := echo.New()
	key := func(target string) string {
		return rc.keyFor(e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}
	assert.NotEqual(t, key("/popularin/men"), key("/popularin/kid"))
	assert.Equal(t, key("/allproducts"), key("/allproducts"))
	assert.Contains(t, key("/allproducts"), "p:")
}

func rateCfg() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled: true,
		Burst:   2,
		Refill:  1,
		Every:   time.Minute,
		IdleTTL: 10 * time.Minute,
		Prefix:  "rl",
	}
}

func TestLocalBuckets(t *testing.T) {
	b := newLocalBuckets(rateCfg())
	now := time.Now()

	assert.True(t, b.take("k", now).allowed)
	assert.True(t, b.take("k", now).allowed)
	d := b.take("k", now)
	assert.False(t, d.allowed)
	assert.Greater(t, d.retry, time.Duration(0))

	// other keys have their own bucket
	assert.True(t, b.take("other", now).allowed)
	// one token refills after an interval
	assert.True(t, b.take("k", now.Add(time.Minute)).allowed)
}

func TestLocalBuckets_SweepsIdle(t *testing.T) {
	b := newLocalBuckets(rateCfg())
	now := time.Now()
	b.take("old", now)
	b.take("new", now.Add(11*time.Minute))
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.NotContains(t, b.entries, "old")
	assert.Contains(t, b.entries, "new")
}

func TestBuildRateKey_IPAndRoute(t *testing.T) {
	e := echo.New()
	key := func(ip, token, path string) string {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		req.Header.Set(TokenHeader, token)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return buildRateKey(rateCfg(), c)
	}

	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /addtocart", key("10.0.0.1", "a", "/addtocart"))
	// tokens are not verified yet when the limiter runs
	assert.Equal(t, key("10.0.0.1", "a", "/addtocart"), key("10.0.0.1", "b", "/addtocart"))
	assert.NotEqual(t, key("10.0.0.1", "a", "/addtocart"), key("10.0.0.2", "a", "/addtocart"))
	assert.NotEqual(t, key("10.0.0.1", "a", "/addtocart"), key("10.0.0.1", "a", "/getcart"))
}

func TestNewTokenBucket_FallsBackToLocal(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := echo.New()
	e.Use(NewTokenBucket(rateCfg(), nil, log))
	e.GET("/allproducts", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/allproducts", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/allproducts", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestNewTokenBucket_Disabled(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := rateCfg()
	cfg.Enabled = false
	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil, log))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}
