package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
	"github.com/fairworkhq/payday/internal/auth/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, email, password_hash, mfa_type, mfa_enabled, totp_secret, created_at, updated_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a          domain.Account
		mfaType    sql.NullString
		mfaEnabled sql.NullTime
		totpSecret sql.NullString
	)

	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &mfaType, &mfaEnabled, &totpSecret, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.MFAType = domain.MFAType(mfaType.String)
	a.MFAEnabled = mapNullTimePtr(mfaEnabled)
	a.TOTPSecret = mapNullStringPtr(totpSecret)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) EnableAppMFA(ctx context.Context, accountID, secret string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET mfa_type = ?, mfa_enabled = ?, totp_secret = ?, updated_at = ?
		WHERE id = ?`,
		domain.MFATypeApp, now, secret, now, accountID,
	)
	if err != nil {
		return err
	}
	return requireRowUpdated(res)
}

func (r *accountsRepo) EnableEmailMFA(ctx context.Context, accountID string) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET mfa_type = ?, mfa_enabled = ?, totp_secret = NULL, updated_at = ?
		WHERE id = ?`,
		domain.MFATypeEmail, now, now, accountID,
	)
	if err != nil {
		return err
	}
	return requireRowUpdated(res)
}

func (r *accountsRepo) DisableMFA(ctx context.Context, accountID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET mfa_type = NULL, mfa_enabled = NULL, totp_secret = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRowUpdated(res)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func requireRowUpdated(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
