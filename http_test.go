package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Request:    req,
	}
}

func TestService_HTTPRequest(t *testing.T) {
	t.Run("mints and returns correlation", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)

		corr := svc.HTTPRequest(req)
		require.NotEmpty(t, corr.TraceID)
		require.NotEmpty(t, corr.RequestID)
		assert.False(t, corr.Start.IsZero())

		rec, ok := eng.last()
		require.True(t, ok)
		assert.Equal(t, LevelInfo, rec.level)
		assert.Equal(t, "GET /api/users", rec.message)
		assert.Equal(t, string(KindHTTPRequest), rec.meta[FieldType])
		assert.Equal(t, corr.TraceID, rec.meta[FieldTraceID])
		assert.Equal(t, corr.RequestID, rec.meta[FieldRequestID])
		assert.Equal(t, "/api/users", rec.meta[fieldURL])
		assert.Equal(t, http.MethodGet, rec.meta[fieldMethod])
	})

	t.Run("trace id from header", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(DefaultTraceHeader, "from-header")

		corr := svc.HTTPRequest(req)
		assert.Equal(t, "from-header", corr.TraceID)
	})

	t.Run("trace id from context beats header", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(DefaultTraceHeader, "from-header")
		req = req.WithContext(ContextWithTraceID(req.Context(), "from-ctx"))

		corr := svc.HTTPRequest(req)
		assert.Equal(t, "from-ctx", corr.TraceID)
	})

	t.Run("explicit option beats everything", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(DefaultTraceHeader, "from-header")

		corr := svc.HTTPRequest(req, WithTraceID("explicit"), WithRequestID("r-9"))
		assert.Equal(t, "explicit", corr.TraceID)
		assert.Equal(t, "r-9", corr.RequestID)
	})

	t.Run("nil request", func(t *testing.T) {
		svc, eng := newTestService(t)
		corr := svc.HTTPRequest(nil)
		assert.Equal(t, Correlation{}, corr)
		assert.Equal(t, 0, eng.count())
	})

	t.Run("uninitialized service", func(t *testing.T) {
		svc := New()
		corr := svc.HTTPRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, Correlation{}, corr)
	})

	t.Run("body captured when supplied", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)

		svc.HTTPRequest(req, WithBody(`{"sku":"a-1"}`))
		rec, _ := eng.last()
		assert.Equal(t, `{"sku":"a-1"}`, rec.meta[fieldBody])
	})
}

func TestService_HTTPResponse(t *testing.T) {
	t.Run("correlates with the paired request", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)

		corr := svc.HTTPRequest(req)
		svc.HTTPResponse(newResponse(req, http.StatusOK))

		rec, ok := eng.last()
		require.True(t, ok)
		assert.Equal(t, string(KindHTTPResponse), rec.meta[FieldType])
		assert.Equal(t, corr.TraceID, rec.meta[FieldTraceID])
		assert.Equal(t, corr.RequestID, rec.meta[FieldRequestID])
		assert.EqualValues(t, http.StatusOK, rec.meta[fieldStatusCode])

		ms, durOK := rec.meta[FieldDuration].(int64)
		require.True(t, durOK)
		assert.GreaterOrEqual(t, ms, int64(0))
	})

	t.Run("stash is consumed once", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		corr := svc.HTTPRequest(req)
		svc.HTTPResponse(newResponse(req, http.StatusOK))
		svc.HTTPResponse(newResponse(req, http.StatusOK))

		records := eng.all()
		require.Len(t, records, 3)
		assert.Equal(t, corr.RequestID, records[1].meta[FieldRequestID])
		// Second response had no stash left; it minted a fresh id
		assert.NotEqual(t, corr.RequestID, records[2].meta[FieldRequestID])
		assert.NotNil(t, records[2].meta[FieldRequestID])
	})

	t.Run("severity follows status", func(t *testing.T) {
		svc, eng := newTestService(t)
		cases := []struct {
			status int
			want   Level
		}{
			{http.StatusOK, LevelInfo},
			{http.StatusMovedPermanently, LevelInfo},
			{http.StatusNotFound, LevelWarn},
			{http.StatusInternalServerError, LevelError},
			{http.StatusBadGateway, LevelError},
		}
		for _, tc := range cases {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			svc.HTTPResponse(newResponse(req, tc.status))
			rec, _ := eng.last()
			assert.Equal(t, tc.want, rec.level, "status %d", tc.status)
		}
	})

	t.Run("explicit level overrides status", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		svc.HTTPResponse(newResponse(req, http.StatusInternalServerError), WithLevel(LevelInfo))
		rec, _ := eng.last()
		assert.Equal(t, LevelInfo, rec.level)
	})

	t.Run("stash miss falls back to options", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		svc.HTTPResponse(newResponse(req, http.StatusOK),
			WithTraceID("t-opt"), WithRequestID("r-opt"), WithStartTime(time.Now().Add(-time.Second)))

		rec, _ := eng.last()
		assert.Equal(t, "t-opt", rec.meta[FieldTraceID])
		assert.Equal(t, "r-opt", rec.meta[FieldRequestID])
		ms, ok := rec.meta[FieldDuration].(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, ms, int64(1000))
	})

	t.Run("stash miss with no options mints silently", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		svc.HTTPResponse(newResponse(req, http.StatusOK))
		rec, _ := eng.last()
		assert.NotEmpty(t, rec.meta[FieldTraceID])
		assert.NotNil(t, rec.meta[FieldRequestID])
		assert.EqualValues(t, 0, rec.meta[FieldDuration])
	})

	t.Run("explicit duration beats stash", func(t *testing.T) {
		svc, eng := newTestService(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		svc.HTTPRequest(req)
		svc.HTTPResponse(newResponse(req, http.StatusOK), WithDuration(7*time.Second))
		rec, _ := eng.last()
		assert.EqualValues(t, 7000, rec.meta[FieldDuration])
	})

	t.Run("nil response", func(t *testing.T) {
		svc, eng := newTestService(t)
		svc.HTTPResponse(nil)
		assert.Equal(t, 0, eng.count())
	})

	t.Run("response without request", func(t *testing.T) {
		svc, eng := newTestService(t)
		svc.HTTPResponse(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})
		rec, ok := eng.last()
		require.True(t, ok)
		assert.Equal(t, "response 200", rec.message)
		assert.NotEmpty(t, rec.meta[FieldTraceID])
	})
}

func TestHTTPHeaderRedaction(t *testing.T) {
	svc, eng := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Cookie", "session=abc")
	req.Header.Set("X-Api-Key", "key-123")
	req.Header.Set("Accept", "application/json")

	svc.HTTPRequest(req)

	rec, ok := eng.last()
	require.True(t, ok)
	headers, isMap := rec.meta[fieldHeaders].(map[string]string)
	require.True(t, isMap)

	assert.Equal(t, RedactedValue, headers["Authorization"])
	assert.Equal(t, RedactedValue, headers["Cookie"])
	assert.Equal(t, RedactedValue, headers["X-Api-Key"])
	assert.Equal(t, "application/json", headers["Accept"])

	// The live request still carries the real values
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
}

func TestHTTPClientIPNormalization(t *testing.T) {
	svc, eng := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::ffff:203.0.113.50]:9000"

	svc.HTTPRequest(req)
	rec, _ := eng.last()
	assert.Equal(t, "203.0.113.50", rec.meta[fieldClientIP])
}

func TestHTTPBodyTruncation(t *testing.T) {
	cfg := validTestConfig()
	cfg.MaxBodyBytes = 8
	eng := &captureEngine{}
	svc := New(WithConfig(cfg), WithEngine(eng))
	require.NoError(t, svc.Initialize())
	defer svc.Close()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	svc.HTTPRequest(req, WithBody("0123456789abcdef"))

	rec, _ := eng.last()
	assert.Equal(t, "01234567...(truncated)", rec.meta[fieldBody])
}
