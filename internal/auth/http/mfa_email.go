package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

// EmailSetupHandler handles email-code enrollment.
type EmailSetupHandler struct {
	MFAService *service.MFAService
}

// HandleSend handles POST /v1/auth/mfa/email/setup
//
//	@Summary		Begin email-code setup
//	@Description	Mails a one-time code to the account's address. Re-sending supersedes the
//	@Description	previous code; the account is untouched until the code is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Code sent"
//	@Failure		400	{object}	authsdk.ErrorResponse	"Email verification already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing session token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/mfa/email/setup [post].
func (h *EmailSetupHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.MFAService.SendEmailEnrollCode(ctx, accountID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("email setup code sent", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "verification code sent",
	})
}

// HandleConfirm handles POST /v1/auth/mfa/email/verify
//
//	@Summary		Confirm email-code setup
//	@Description	Verifies the mailed code and switches the account to email-code MFA, superseding
//	@Description	any previously active authenticator app in the same transaction.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailVerifyRequest	true	"Mailed code"
//	@Success		200		{object}	authsdk.MessageResponse		"MFA enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Invalid or expired code"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid or missing session token"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/auth/mfa/email/verify [post].
func (h *EmailSetupHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.EmailVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Code == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.ConfirmEmailEnroll(ctx, accountID, req.Code); err != nil {
		log.Warn("email setup confirmation failed", "account_id", accountID)
		writeServiceError(w, log, err)
		return
	}

	log.Info("email setup confirmed", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "email verification enabled",
	})
}
