package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/dto"
)

// StatusCode maps an error kind to its HTTP status.
func StatusCode(kind apperror.Kind) int {
	switch kind {
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.Full, apperror.AlreadyRegistered, apperror.NotOpen, apperror.InvalidState:
		return http.StatusConflict
	case apperror.InvalidInput:
		return http.StatusBadRequest
	case apperror.NotLegal, apperror.NotEligible, apperror.Empty, apperror.NotRegistered, apperror.DeadlinePassed:
		return http.StatusUnprocessableEntity
	case apperror.StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler that renders apperror
// kinds as JSON. Fatal errors are logged and their details withheld.
func NewErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		resp := dto.ErrorResponse{Message: "internal server error"}

		var he *echo.HTTPError
		var ae *apperror.Error
		switch {
		case errors.As(err, &he):
			code = he.Code
			if m, ok := he.Message.(string); ok {
				resp.Message = m
			} else {
				resp.Message = http.StatusText(code)
			}
		case errors.As(err, &ae) && !apperror.IsFatal(err):
			code = StatusCode(ae.Kind)
			resp = dto.ErrorResponse{Message: ae.Message, Kind: string(ae.Kind), Metadata: ae.Metadata}
		case errors.As(err, &ae):
			code = StatusCode(ae.Kind)
			resp.Kind = string(ae.Kind)
		}

		if code >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", code).
				Msg("request failed")
		}
		_ = c.JSON(code, resp)
	}
}
