package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]any{"id": "123", "name": "test"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	env := decode(t, w)
	assert.Equal(t, Version, env.V)
	assert.True(t, env.Success)

	dataMap, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123", dataMap["id"])
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		code   domainerrors.Code
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "msg", discard()) }, http.StatusBadRequest, domainerrors.CodeBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "msg", discard()) }, http.StatusNotFound, domainerrors.CodeNotFound},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "msg", nil) }, http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "msg", discard()) }, http.StatusInternalServerError, domainerrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, "msg", env.Error)
			assert.Equal(t, string(tt.code), env.Code)
			assert.Nil(t, env.Data)
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, domainerrors.ValidationWithDetails("bad filters", map[string]string{"dates": "invalid"}), discard())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, string(domainerrors.CodeValidation), env.Code)
		assert.Equal(t, "bad filters", env.Message)
		assert.Equal(t, map[string]any{"dates": "invalid"}, env.Details)
	})

	t.Run("unknown error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, errors.New("disk on fire"), discard())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		assert.Equal(t, "internal server error", env.Error)
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status          int
		expectedSuccess bool
	}{
		{200, true},
		{204, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		JSON(w, tt.status, nil, nil)
		assert.Equal(t, tt.expectedSuccess, decode(t, w).Success, "status %d", tt.status)
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(SuccessEnvelope("test"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":true,"data":"test"}`, string(data))

	data, err = json.Marshal(ErrorEnvelope("", "something failed", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"success":false,"error":"something failed","message":"something failed"}`, string(data))
}
