package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/anima/internal/models"
)

// WeeklyRanking ranks users by xp for the week starting weekStart. Ties share a rank.
func (s *Store) WeeklyRanking(ctx context.Context, weekStart string, limit int) ([]models.WeeklyXP, error) {
	q := `
		SELECT RANK() OVER (ORDER BY w.xp DESC)::int, w.user_id, u.full_name, u.avatar_url, w.xp
		FROM v_weekly_xp w
		JOIN users u ON u.id = w.user_id
		WHERE w.week_start = $1::date
		ORDER BY w.xp DESC, u.full_name
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, q, weekStart, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank week %s: %w", weekStart, err)
	}
	defer rows.Close()

	out := []models.WeeklyXP{}
	for rows.Next() {
		var w models.WeeklyXP
		if err := rows.Scan(&w.Rank, &w.UserID, &w.FullName, &w.AvatarURL, &w.XP); err != nil {
			return nil, fmt.Errorf("failed to scan weekly xp: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UserWeeklyXP returns the user's xp and rank for a week. A user without xp gets xp 0 and rank 0.
func (s *Store) UserWeeklyXP(ctx context.Context, userID uuid.UUID, weekStart string) (models.WeeklyXP, error) {
	q := `
		SELECT rank, user_id, xp FROM (
			SELECT RANK() OVER (ORDER BY xp DESC)::int AS rank, user_id, xp
			FROM v_weekly_xp
			WHERE week_start = $2::date
		) ranked
		WHERE user_id = $1
	`
	w := models.WeeklyXP{UserID: userID}
	err := s.db.QueryRow(ctx, q, userID, weekStart).Scan(&w.Rank, &w.UserID, &w.XP)
	if errors.Is(err, pgx.ErrNoRows) {
		return w, nil
	}
	if err != nil {
		return w, fmt.Errorf("failed to get weekly xp of %s: %w", userID, err)
	}
	return w, nil
}

// AwardPickWin records the xp event and credits points in one transaction. It returns false
// without touching the ledger when the event was already recorded.
func (s *Store) AwardPickWin(ctx context.Context, ev models.XPEvent, points int64) (bool, error) {
	awarded := false
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO xp_events (user_id, amount, reason, game_id, slate_date)
			VALUES ($1, $2, $3, $4, $5::date)
			ON CONFLICT (user_id, reason, game_id, slate_date) DO NOTHING
		`, ev.UserID, ev.Amount, ev.Reason, ev.GameID, ev.SlateDate)
		if err != nil {
			return fmt.Errorf("insert xp event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		awarded = true
		if points == 0 {
			return nil
		}
		_, err = creditPoints(ctx, tx, ev.UserID, points, ev.Reason)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to award %s to %s: %w", ev.GameID, ev.UserID, err)
	}
	return awarded, nil
}
