package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
)

// writeServiceError maps a service sentinel onto its wire representation.
// Anything unrecognised is logged and surfaced as a 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		authsdk.ErrInvalidCode.WriteError(w)
	case errors.Is(err, service.ErrCodeExpired):
		authsdk.ErrCodeExpired.WriteError(w)
	case errors.Is(err, service.ErrTicketExpired):
		authsdk.ErrTicketExpired.WriteError(w)
	case errors.Is(err, service.ErrTooManyAttempts):
		authsdk.ErrTooManyAttempts.WriteError(w)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		authsdk.ErrAlreadyEnrolled.WriteError(w)
	case errors.Is(err, service.ErrNotEnrolled):
		authsdk.ErrNotEnrolled.WriteError(w)
	case errors.Is(err, service.ErrEnrollmentExpired):
		authsdk.ErrEnrollmentExpired.WriteError(w)
	default:
		log.Error("unhandled service error", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
