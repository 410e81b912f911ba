package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/pkg/cryptox"
	"github.com/fairworkhq/payday/pkg/idx"
)

// seedAccount creates a development account when AUTH_SEED_EMAIL and
// AUTH_SEED_PASSWORD are set and the database is empty. Real account
// provisioning happens upstream in the payroll platform.
func (app *Application) seedAccount(ctx context.Context) error {
	if app.cfg.SeedEmail == "" || app.cfg.SeedPassword == "" {
		return nil
	}

	empty, err := app.db.Accounts().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing accounts: %w", err)
	}
	if !empty {
		app.logger.Debug("seed skipped, accounts already exist")
		return nil
	}

	hash, err := cryptox.HashPassword(app.cfg.SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        app.cfg.SeedEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := app.db.Accounts().CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to create seed account: %w", err)
	}

	app.logger.Info("seed account created", "account_id", account.ID, "email", account.Email)
	return nil
}
