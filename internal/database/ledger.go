package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/anima/internal/models"
)

// creditPoints moves a user's balance by delta and appends the matching ledger row.
// It must run inside a transaction; the user row is locked for the duration.
func creditPoints(ctx context.Context, q queryable, userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error) {
	var balance int64
	err := q.QueryRow(ctx, `SELECT anima_points_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}

	next := balance + delta
	if next < 0 {
		return nil, models.ErrInsufficientFunds
	}

	if _, err := q.Exec(ctx, `UPDATE users SET anima_points_balance = $1, updated_at = NOW() WHERE id = $2`, next, userID); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	entry := models.LedgerEntry{UserID: userID, Delta: delta, BalanceAfter: next, Reason: reason}
	err = q.QueryRow(ctx, `
		INSERT INTO anima_points_ledger (user_id, delta, balance_after, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, userID, delta, next, reason).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}
	return &entry, nil
}

// CreditPoints applies delta to the user's balance and records it in the ledger in one transaction.
func (s *Store) CreditPoints(ctx context.Context, userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		entry, err = creditPoints(ctx, tx, userID, delta, reason)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit %d points to %s: %w", delta, userID, err)
	}
	return entry, nil
}

// SumPoints totals the user's ledger deltas with created_at in [from, to).
func (s *Store) SumPoints(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.PointsSummary, error) {
	var sum models.PointsSummary
	q := `
		SELECT COALESCE(SUM(delta), 0), COUNT(*)
		FROM anima_points_ledger
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`
	if err := s.db.QueryRow(ctx, q, userID, from, to).Scan(&sum.Total, &sum.Entries); err != nil {
		return sum, fmt.Errorf("failed to sum points for %s: %w", userID, err)
	}
	return sum, nil
}

// LedgerHistory returns the newest entries for a user.
func (s *Store) LedgerHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	q := `
		SELECT id, user_id, delta, balance_after, reason, created_at
		FROM anima_points_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.BalanceAfter, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AuditLedger lists users whose balance differs from their latest balance_after or whose ledger
// deltas do not add up to the balance. Users with no ledger rows and a zero balance are consistent.
func (s *Store) AuditLedger(ctx context.Context) ([]models.LedgerMismatch, error) {
	q := `
		SELECT u.id, u.email, u.anima_points_balance, latest.balance_after, COALESCE(sums.total, 0)
		FROM users u
		LEFT JOIN LATERAL (
			SELECT l.balance_after
			FROM anima_points_ledger l
			WHERE l.user_id = u.id
			ORDER BY l.created_at DESC, l.id DESC
			LIMIT 1
		) latest ON TRUE
		LEFT JOIN (
			SELECT user_id, SUM(delta) AS total
			FROM anima_points_ledger
			GROUP BY user_id
		) sums ON sums.user_id = u.id
		WHERE u.anima_points_balance IS DISTINCT FROM COALESCE(latest.balance_after, 0)
		   OR u.anima_points_balance <> COALESCE(sums.total, 0)
		ORDER BY u.email
	`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to audit ledger: %w", err)
	}
	defer rows.Close()

	out := []models.LedgerMismatch{}
	for rows.Next() {
		var m models.LedgerMismatch
		if err := rows.Scan(&m.UserID, &m.Email, &m.Balance, &m.LatestBalanceAfter, &m.LedgerSum); err != nil {
			return nil, fmt.Errorf("failed to scan ledger mismatch: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
