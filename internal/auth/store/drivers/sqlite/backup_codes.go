package sqlite

import (
	"context"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
)

type backupCodesRepo struct {
	q querier
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, c domain.BackupCode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO backup_codes (id, account_id, code_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, c.AccountID, c.CodeHash, c.CreatedAt,
	)
	return err
}

// ConsumeBackupCode flips used_at on the matching unused row. The WHERE clause
// carries the single-use guarantee: only one caller can see RowsAffected == 1
// for a given code, and a consumed code never matches again.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, accountID, codeHash string, now time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE backup_codes SET used_at = ?
		WHERE account_id = ? AND code_hash = ? AND used_at IS NULL`,
		now, accountID, codeHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, accountID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM backup_codes WHERE account_id = ?`, accountID)
	return err
}

func (r *backupCodesRepo) CountUnusedBackupCodes(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM backup_codes
		WHERE account_id = ? AND used_at IS NULL`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
