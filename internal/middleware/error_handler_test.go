package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Eursukkul/group-events/internal/apperror"
)

func TestStatusCode(t *testing.T) {
	tests := map[apperror.Kind]int{
		apperror.NotFound:           http.StatusNotFound,
		apperror.Full:               http.StatusConflict,
		apperror.AlreadyRegistered:  http.StatusConflict,
		apperror.NotOpen:            http.StatusConflict,
		apperror.InvalidState:       http.StatusConflict,
		apperror.InvalidInput:       http.StatusBadRequest,
		apperror.NotLegal:           http.StatusUnprocessableEntity,
		apperror.NotEligible:        http.StatusUnprocessableEntity,
		apperror.Empty:              http.StatusUnprocessableEntity,
		apperror.NotRegistered:      http.StatusUnprocessableEntity,
		apperror.DeadlinePassed:     http.StatusUnprocessableEntity,
		apperror.UnknownCost:        http.StatusInternalServerError,
		apperror.StorageUnavailable: http.StatusServiceUnavailable,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusCode(kind), string(kind))
	}
}

func handle(err error) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	NewErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_BusinessError(t *testing.T) {
	rec := handle(apperror.WithMetadata(apperror.NotEligible, "participant does not meet the event requirements",
		map[string]string{"event_id": "ev-1"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"message":"participant does not meet the event requirements","kind":"NOT_ELIGIBLE","metadata":{"event_id":"ev-1"}}`,
		rec.Body.String())
}

func TestErrorHandler_EchoError(t *testing.T) {
	rec := handle(echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid request body"}`, rec.Body.String())
}

func TestErrorHandler_UnknownError(t *testing.T) {
	rec := handle(errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
}

func TestErrorHandler_FatalKindHidesMessage(t *testing.T) {
	rec := handle(apperror.New(apperror.UnknownCost, "unknown optional cost c-9"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error","kind":"UNKNOWN_COST"}`, rec.Body.String())
}
