package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

// LoginHandler handles password authentication.
type LoginHandler struct {
	LoginService *service.LoginService
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Sign in with email and password
//	@Description	Verifies the password. Accounts without a second factor receive a session directly.
//	@Description	Accounts with MFA enabled receive a 409 challenge carrying a single-use ticket.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.SessionResponse	"Session token and account profile"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid email or password"
//	@Failure		409		{object}	authsdk.ErrorResponse	"MFA challenge: ticket, mfa_type, expires_in"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	session, challenge, err := h.LoginService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", "email", req.Email)
		writeServiceError(w, log, err)
		return
	}

	if challenge != nil {
		log.Info("login challenged", "mfa_type", challenge.MFAType)
		(&authsdk.MFARequiredError{
			Ticket:    challenge.Ticket,
			MFAType:   string(challenge.MFAType),
			ExpiresIn: int64(challenge.ExpiresIn.Seconds()),
		}).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(session))
}

func sessionResponse(s domain.Session) authsdk.SessionResponse {
	return authsdk.SessionResponse{
		Token: s.Token,
		Account: authsdk.Account{
			ID:         s.Account.ID,
			Email:      s.Account.Email,
			MFAEnabled: s.Account.MFAEnabled,
			MFAType:    string(s.Account.MFAType),
		},
		ExpiresIn: int64(s.ExpiresIn.Seconds()),
	}
}
