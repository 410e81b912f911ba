package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
)

type totpEnrollmentsRepo struct {
	q querier
}

func (r *totpEnrollmentsRepo) UpsertEnrollment(ctx context.Context, e domain.TOTPEnrollment) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO totp_enrollments (account_id, secret, code_hashes, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			secret      = excluded.secret,
			code_hashes = excluded.code_hashes,
			created_at  = excluded.created_at,
			expires_at  = excluded.expires_at`,
		e.AccountID, e.Secret, strings.Join(e.CodeHashes, " "), e.CreatedAt, e.ExpiresAt,
	)
	return err
}

func (r *totpEnrollmentsRepo) GetEnrollment(ctx context.Context, accountID string) (domain.TOTPEnrollment, error) {
	var (
		e      domain.TOTPEnrollment
		hashes string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT account_id, secret, code_hashes, created_at, expires_at
		FROM totp_enrollments WHERE account_id = ?`, accountID,
	).Scan(&e.AccountID, &e.Secret, &hashes, &e.CreatedAt, &e.ExpiresAt)
	if err != nil {
		return domain.TOTPEnrollment{}, mapNotFound(err)
	}
	e.CodeHashes = strings.Fields(hashes)
	return e, nil
}

func (r *totpEnrollmentsRepo) DeleteEnrollment(ctx context.Context, accountID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM totp_enrollments WHERE account_id = ?`, accountID)
	return err
}

func (r *totpEnrollmentsRepo) DeleteExpiredEnrollments(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM totp_enrollments WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
