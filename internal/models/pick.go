package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome of a team pick once results are joined in.
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomePending Outcome = "PENDING"
)

// TeamPick is a user's daily prediction; one per (user, game, slate date).
type TeamPick struct {
	UserID           uuid.UUID `json:"user_id"`
	GameID           string    `json:"game_id"`
	SlateDate        string    `json:"slate_date"`
	SelectedTeamID   string    `json:"selected_team_id"`
	SelectedTeamName string    `json:"selected_team_name"`
	SelectedTeamAbbr string    `json:"selected_team_abbr"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ResultWinner is a row of v_results_team_winners. WinnerTeamID is nil until resolved.
type ResultWinner struct {
	GameID       string  `json:"game_id"`
	SlateDate    string  `json:"slate_date"`
	WinnerTeamID *string `json:"winner_team_id"`
}

// GameResult is the stored final (or in-progress) score of a game.
type GameResult struct {
	GameID        string  `json:"game_id"`
	SlateDate     string  `json:"slate_date"`
	HomeTeamID    string  `json:"home_team_id"`
	VisitorTeamID string  `json:"visitor_team_id"`
	HomeScore     int     `json:"home_score"`
	VisitorScore  int     `json:"visitor_score"`
	WinnerTeamID  *string `json:"winner_team_id"`
	Status        string  `json:"status"`
}

type PickWithOutcome struct {
	TeamPick
	WinnerTeamID *string `json:"winner_team_id"`
	Outcome      Outcome `json:"outcome"`
}
