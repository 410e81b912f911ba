package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairworkhq/payday/internal/auth/service"
	"github.com/fairworkhq/payday/pkg/authsdk"
	"github.com/fairworkhq/payday/pkg/httpx"
	"github.com/fairworkhq/payday/pkg/slogx"
)

// DisableHandler turns MFA off.
type DisableHandler struct {
	MFAService *service.MFAService
}

// HandleDisable handles POST /v1/auth/mfa/disable
//
//	@Summary		Disable multi-factor authentication
//	@Description	Re-proves the password, then wipes the active method, backup codes, outstanding
//	@Description	email codes and any pending setup in one transaction. Irrecoverable; a later
//	@Description	re-enrollment starts from scratch.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.DisableRequest	true	"Current password"
//	@Success		200		{object}	authsdk.MessageResponse	"MFA disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"MFA not enabled"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong password or missing session token"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/mfa/disable [post].
func (h *DisableHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.AccountIDFromContext(ctx)
	if accountID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.DisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.Disable(ctx, accountID, req.Password); err != nil {
		log.Warn("mfa disable failed", "account_id", accountID)
		writeServiceError(w, log, err)
		return
	}

	log.Info("mfa disabled", "account_id", accountID)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "multi-factor authentication disabled",
	})
}
