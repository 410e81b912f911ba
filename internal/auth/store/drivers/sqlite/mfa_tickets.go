package sqlite

import (
	"context"
	"time"

	"github.com/fairworkhq/payday/internal/auth/domain"
)

type mfaTicketsRepo struct {
	q querier
}

func (r *mfaTicketsRepo) CreateTicket(ctx context.Context, t domain.MFATicket) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO mfa_tickets (id, account_id, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Attempts, t.CreatedAt, t.ExpiresAt,
	)
	return err
}

func (r *mfaTicketsRepo) GetTicket(ctx context.Context, id string) (domain.MFATicket, error) {
	var t domain.MFATicket
	err := r.q.QueryRowContext(ctx, `
		SELECT id, account_id, attempts, created_at, expires_at
		FROM mfa_tickets WHERE id = ?`, id,
	).Scan(&t.ID, &t.AccountID, &t.Attempts, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return domain.MFATicket{}, mapNotFound(err)
	}
	return t, nil
}

func (r *mfaTicketsRepo) IncrementTicketAttempts(ctx context.Context, id string) (domain.MFATicket, error) {
	_, err := r.q.ExecContext(ctx, `
		UPDATE mfa_tickets SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return domain.MFATicket{}, err
	}
	return r.GetTicket(ctx, id)
}

// ConsumeTicket deletes the ticket only while it is still live. The delete is
// the atomicity point: exactly one caller observes RowsAffected == 1, so a
// ticket can never mint two sessions.
func (r *mfaTicketsRepo) ConsumeTicket(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM mfa_tickets WHERE id = ? AND expires_at > ?`, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *mfaTicketsRepo) DeleteTicket(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM mfa_tickets WHERE id = ?`, id)
	return err
}

func (r *mfaTicketsRepo) DeleteExpiredTickets(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM mfa_tickets WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
