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

// VerifyHandler completes an MFA-challenged login.
type VerifyHandler struct {
	LoginService *service.LoginService
}

// HandleVerify handles POST /v1/auth/mfa/verify
//
//	@Summary		Complete a login challenge
//	@Description	Exchanges a live ticket and a valid code for a session. The ticket is single-use:
//	@Description	it is consumed by the first successful verification and cannot mint a second session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"Ticket, code and method (totp|email|backup)"
//	@Success		200		{object}	authsdk.SessionResponse	"Session token and account profile"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid code or malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Ticket expired or attempt budget spent"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/mfa/verify [post].
func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	method := domain.MFAMethod(req.Method)
	switch method {
	case domain.MFAMethodTOTP, domain.MFAMethodEmail, domain.MFAMethodBackup:
	default:
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Ticket == "" || req.Code == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	session, err := h.LoginService.VerifyMFA(ctx, req.Ticket, req.Code, method)
	if err != nil {
		log.Warn("mfa verification failed", "method", method)
		writeServiceError(w, log, err)
		return
	}

	log.Info("mfa verification succeeded", "account_id", session.Account.ID, "method", method)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(session))
}

// HandleEmailChallenge handles POST /v1/auth/mfa/challenge/email
//
//	@Summary		Request a login code by email
//	@Description	Sends a one-time code to the account behind a live ticket. A new code supersedes
//	@Description	any previously issued one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailChallengeRequest	true	"Ticket from the login challenge"
//	@Success		200		{object}	authsdk.MessageResponse			"Code sent"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed request or email MFA not active"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Ticket expired"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/auth/mfa/challenge/email [post].
func (h *VerifyHandler) HandleEmailChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.EmailChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Ticket == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.LoginService.RequestEmailChallenge(ctx, req.Ticket); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "verification code sent",
	})
}
