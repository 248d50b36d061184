package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheck_OK(t *testing.T) {
	rec := httptest.NewRecorder()
	Check(pingFunc(func(context.Context) error { return nil }))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","db":"connected"}`, rec.Body.String())
}

func TestCheck_Unreachable(t *testing.T) {
	rec := httptest.NewRecorder()
	Check(pingFunc(func(context.Context) error {
		return errors.New("dial tcp 127.0.0.1:5432: connection refused")
	}))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","db":"disconnected","error":"dial tcp 127.0.0.1:5432: connection refused"}`, rec.Body.String())
}

func TestCheck_PassesDeadline(t *testing.T) {
	rec := httptest.NewRecorder()
	Check(pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
