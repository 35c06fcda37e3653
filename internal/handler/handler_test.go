package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/service"
)

func TestFlexNumber_JSON(t *testing.T) {
	cases := []struct {
		in    string
		want  int64
		isInt bool
	}{
		{`5`, 5, true},
		{`"5"`, 5, true},
		{`" 12 "`, 12, true},
		{`3.0`, 3, true},
		{`1.5`, 0, false},
		{`null`, 0, false},
		{`""`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var n flexNumber
			require.NoError(t, json.Unmarshal([]byte(tc.in), &n))
			got, ok := n.Int()
			assert.Equal(t, tc.isInt, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	var n flexNumber
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
	for _, in := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`, `"1e400"`} {
		assert.Error(t, json.Unmarshal([]byte(in), &n), in)
	}
	assert.Error(t, n.UnmarshalParam("nan"))
}

func TestFlexNumber_Float(t *testing.T) {
	var n flexNumber
	require.NoError(t, json.Unmarshal([]byte(`"80.5"`), &n))
	f, ok := n.Float()
	assert.True(t, ok)
	assert.Equal(t, 80.5, f)

	_, ok = flexNumber{}.Float()
	assert.False(t, ok)
}

func TestFlexNumber_FormBinding(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/addtocart", strings.NewReader("itemId=7"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())

	id, ok := bindItemID(c)
	assert.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("x: %w", service.ErrDuplicateEmail), http.StatusBadRequest},
		{fmt.Errorf("x: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", service.ErrTimeout), http.StatusGatewayTimeout},
		{fmt.Errorf("lock: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("x: %w: %w", service.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{fmt.Errorf("x: %w", service.ErrUnauthenticated), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, respondError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.NotContains(t, rec.Body.String(), "dial tcp")
		assert.Equal(t, tc.err, c.Get("error"))
	}
}
