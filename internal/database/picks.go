package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/anima/internal/models"
)

const pickColumns = `user_id, game_id, to_char(slate_date, 'YYYY-MM-DD'), selected_team_id, selected_team_name, selected_team_abbr, created_at, updated_at`

// UpsertTeamPicks writes picks, replacing the selection for an existing (user, game, slate date).
func (s *Store) UpsertTeamPicks(ctx context.Context, picks []models.TeamPick) error {
	q := `
		INSERT INTO picks_teams (user_id, game_id, slate_date, selected_team_id, selected_team_name, selected_team_abbr)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		ON CONFLICT (user_id, game_id, slate_date)
		DO UPDATE SET selected_team_id = EXCLUDED.selected_team_id,
		              selected_team_name = EXCLUDED.selected_team_name,
		              selected_team_abbr = EXCLUDED.selected_team_abbr,
		              updated_at = NOW()
	`
	return pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, p := range picks {
			if _, err := tx.Exec(ctx, q, p.UserID, p.GameID, p.SlateDate, p.SelectedTeamID, p.SelectedTeamName, p.SelectedTeamAbbr); err != nil {
				return fmt.Errorf("failed to upsert pick %s/%s: %w", p.GameID, p.SlateDate, err)
			}
		}
		return nil
	})
}

// ListTeamPicks returns one user's picks for a slate date.
func (s *Store) ListTeamPicks(ctx context.Context, userID uuid.UUID, slateDate string) ([]models.TeamPick, error) {
	q := `SELECT ` + pickColumns + ` FROM picks_teams WHERE user_id = $1 AND slate_date = $2::date ORDER BY game_id`
	return s.queryPicks(ctx, q, userID, slateDate)
}

// ListPicksForDate returns every user's picks for a slate date.
func (s *Store) ListPicksForDate(ctx context.Context, slateDate string) ([]models.TeamPick, error) {
	q := `SELECT ` + pickColumns + ` FROM picks_teams WHERE slate_date = $1::date ORDER BY user_id, game_id`
	return s.queryPicks(ctx, q, slateDate)
}

func (s *Store) queryPicks(ctx context.Context, q string, args ...any) ([]models.TeamPick, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	picks := []models.TeamPick{}
	for rows.Next() {
		var p models.TeamPick
		if err := rows.Scan(&p.UserID, &p.GameID, &p.SlateDate, &p.SelectedTeamID, &p.SelectedTeamName, &p.SelectedTeamAbbr, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// WinnersForDate reads the resolved-winners view for a slate date.
func (s *Store) WinnersForDate(ctx context.Context, slateDate string) ([]models.ResultWinner, error) {
	q := `
		SELECT game_id, to_char(slate_date, 'YYYY-MM-DD'), winner_team_id
		FROM v_results_team_winners
		WHERE slate_date = $1::date
	`
	rows, err := s.db.Query(ctx, q, slateDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners for %s: %w", slateDate, err)
	}
	defer rows.Close()

	winners := []models.ResultWinner{}
	for rows.Next() {
		var w models.ResultWinner
		if err := rows.Scan(&w.GameID, &w.SlateDate, &w.WinnerTeamID); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

// UpsertResults stores upstream scores; a later sync overwrites an earlier one.
func (s *Store) UpsertResults(ctx context.Context, results []models.GameResult) error {
	q := `
		INSERT INTO results_team (game_id, slate_date, home_team_id, visitor_team_id, home_score, visitor_score, winner_team_id, status)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id, slate_date)
		DO UPDATE SET home_score = EXCLUDED.home_score,
		              visitor_score = EXCLUDED.visitor_score,
		              winner_team_id = EXCLUDED.winner_team_id,
		              status = EXCLUDED.status,
		              updated_at = NOW()
	`
	return pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, r := range results {
			if _, err := tx.Exec(ctx, q, r.GameID, r.SlateDate, r.HomeTeamID, r.VisitorTeamID, r.HomeScore, r.VisitorScore, r.WinnerTeamID, r.Status); err != nil {
				return fmt.Errorf("failed to upsert result %s: %w", r.GameID, err)
			}
		}
		return nil
	})
}
