package http

import (
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

// BackupCodesHandler regenerates the recovery batch.
type BackupCodesHandler struct {
	MFAService *service.MFAService
}

// HandleRegenerate handles POST /v1/auth/mfa/backup-codes/regenerate
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces the whole recovery batch with a fresh one. The old batch stops working
//	@Description	the moment this returns, used or not. Codes are shown once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.BackupCodesResponse	"New backup codes (shown once)"
//	@Failure		400	{object}	authsdk.ErrorResponse		"MFA not enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing session token"
//	@Failure		429	{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/auth/mfa/backup-codes/regenerate [post].
func (h *BackupCodesHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	codes, err := h.MFAService.RegenerateBackupCodes(ctx, accountID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("backup codes regenerated", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		BackupCodes: codes,
	})
}
