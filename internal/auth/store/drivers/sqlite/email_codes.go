package sqlite

import (
	"context"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
)

type emailCodesRepo struct {
	q querier
}

// UpsertEmailCode replaces any previous code for the account in one statement,
// so at no point are two codes simultaneously valid.
func (r *emailCodesRepo) UpsertEmailCode(ctx context.Context, c domain.EmailCode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO email_codes (account_id, code_hash, purpose, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			code_hash  = excluded.code_hash,
			purpose    = excluded.purpose,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		c.AccountID, c.CodeHash, c.Purpose, c.CreatedAt, c.ExpiresAt,
	)
	return err
}

func (r *emailCodesRepo) GetEmailCode(ctx context.Context, accountID string) (domain.EmailCode, error) {
	var c domain.EmailCode
	err := r.q.QueryRowContext(ctx, `
		SELECT account_id, code_hash, purpose, created_at, expires_at
		FROM email_codes WHERE account_id = ?`, accountID,
	).Scan(&c.AccountID, &c.CodeHash, &c.Purpose, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		return domain.EmailCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *emailCodesRepo) DeleteEmailCode(ctx context.Context, accountID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM email_codes WHERE account_id = ?`, accountID)
	return err
}

func (r *emailCodesRepo) DeleteExpiredEmailCodes(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM email_codes WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
