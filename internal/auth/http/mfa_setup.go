package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

// SetupHandler handles authenticator-app enrollment.
type SetupHandler struct {
	MFAService *service.MFAService
}

// HandleBegin handles POST /v1/auth/mfa/setup
//
//	@Summary		Begin authenticator-app setup
//	@Description	Stages a fresh TOTP secret and a batch of backup codes. Nothing on the account
//	@Description	changes until the first code is verified; the backup codes are shown only here.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TOTPSetupResponse	"Secret, provisioning URL and backup codes"
//	@Failure		400	{object}	authsdk.ErrorResponse		"Authenticator app already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing session token"
//	@Failure		429	{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/auth/mfa/setup [post].
func (h *SetupHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	setup, err := h.MFAService.BeginTOTP(ctx, accountID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("totp setup staged", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPSetupResponse{
		Secret:      setup.Secret,
		QRCode:      setup.QRCode,
		BackupCodes: setup.BackupCodes,
		ExpiresIn:   int64(setup.ExpiresIn.Seconds()),
	})
}

// HandleConfirm handles POST /v1/auth/mfa/setup/verify
//
//	@Summary		Confirm authenticator-app setup
//	@Description	Verifies the first code (or one of the staged backup codes) and commits the
//	@Description	enrollment atomically: secret onto the account, backup batch into the vault.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TOTPSetupVerifyRequest	true	"First code"
//	@Success		200		{object}	authsdk.MessageResponse			"MFA enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Invalid code or setup window expired"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid or missing session token"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/auth/mfa/setup/verify [post].
func (h *SetupHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.TOTPSetupVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Code == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.ConfirmTOTP(ctx, accountID, req.Code, req.IsBackupCode); err != nil {
		log.Warn("totp setup confirmation failed", "account_id", accountID)
		writeServiceError(w, log, err)
		return
	}

	log.Info("totp setup confirmed", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "authenticator app enabled",
	})
}
