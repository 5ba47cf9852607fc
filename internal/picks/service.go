package picks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/slate"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoPicks     = errors.New("no picks supplied")
	ErrInvalidPick = errors.New("pick requires gameId and selectedTeamId")
)

// Repository is the storage the pick service needs.
type Repository interface {
	UpsertTeamPicks(ctx context.Context, picks []models.TeamPick) error
	ListTeamPicks(ctx context.Context, userID uuid.UUID, slateDate string) ([]models.TeamPick, error)
	ListPicksForDate(ctx context.Context, slateDate string) ([]models.TeamPick, error)
	WinnersForDate(ctx context.Context, slateDate string) ([]models.ResultWinner, error)
	AwardPickWin(ctx context.Context, ev models.XPEvent, points int64) (bool, error)
}

// Service saves picks, resolves outcomes and settles winning picks.
type Service struct {
	repo      Repository
	winXP     int64
	winPoints int64
}

func NewService(repo Repository, winXP, winPoints int64) *Service {
	return &Service{repo: repo, winXP: winXP, winPoints: winPoints}
}

// PickInput is one selection as posted by a client.
type PickInput struct {
	GameID           string `json:"gameId"`
	SelectedTeamID   string `json:"selectedTeamId"`
	SelectedTeamName string `json:"selectedTeamName"`
	SelectedTeamAbbr string `json:"selectedTeamAbbr"`
}

// SaveTeamPicks validates and upserts a user's picks for one slate date.
func (s *Service) SaveTeamPicks(ctx context.Context, userID uuid.UUID, slateDate string, in []PickInput) ([]models.TeamPick, error) {
	if _, err := slate.ParseDate(slateDate, slate.Eastern()); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, ErrNoPicks
	}

	// last write wins for duplicate games inside a single request
	byGame := make(map[string]int, len(in))
	rows := make([]models.TeamPick, 0, len(in))
	for _, p := range in {
		gameID := strings.TrimSpace(p.GameID)
		teamID := strings.TrimSpace(p.SelectedTeamID)
		if gameID == "" || teamID == "" {
			return nil, ErrInvalidPick
		}
		row := models.TeamPick{
			UserID:           userID,
			GameID:           gameID,
			SlateDate:        slateDate,
			SelectedTeamID:   teamID,
			SelectedTeamName: strings.TrimSpace(p.SelectedTeamName),
			SelectedTeamAbbr: strings.ToUpper(strings.TrimSpace(p.SelectedTeamAbbr)),
		}
		if i, ok := byGame[gameID]; ok {
			rows[i] = row
			continue
		}
		byGame[gameID] = len(rows)
		rows = append(rows, row)
	}

	if err := s.repo.UpsertTeamPicks(ctx, rows); err != nil {
		return nil, fmt.Errorf("save picks: %w", err)
	}
	return rows, nil
}

// WithOutcome returns the user's picks on a slate with WIN/LOSS/PENDING attached.
func (s *Service) WithOutcome(ctx context.Context, userID uuid.UUID, slateDate string) ([]models.PickWithOutcome, error) {
	picks, err := s.repo.ListTeamPicks(ctx, userID, slateDate)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	if len(picks) == 0 {
		return []models.PickWithOutcome{}, nil
	}
	winners, err := s.repo.WinnersForDate(ctx, slateDate)
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}
	return Resolve(picks, WinnerIndex(winners)), nil
}

// SettleReport summarises a settlement run.
type SettleReport struct {
	SlateDate string `json:"slate_date"`
	Picks     int    `json:"picks"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Pending   int    `json:"pending"`
	Awarded   int    `json:"awarded"`
}

// Settle awards XP (and points) once per winning pick. Re-running a slate awards nothing new.
func (s *Service) Settle(ctx context.Context, slateDate string) (*SettleReport, error) {
	if _, err := slate.ParseDate(slateDate, slate.Eastern()); err != nil {
		return nil, err
	}
	picks, err := s.repo.ListPicksForDate(ctx, slateDate)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	winners, err := s.repo.WinnersForDate(ctx, slateDate)
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}

	report := &SettleReport{SlateDate: slateDate, Picks: len(picks)}
	for _, p := range Resolve(picks, WinnerIndex(winners)) {
		switch p.Outcome {
		case models.OutcomeLoss:
			report.Losses++
			continue
		case models.OutcomePending:
			report.Pending++
			continue
		}
		report.Wins++

		awarded, err := s.repo.AwardPickWin(ctx, models.XPEvent{
			UserID:    p.UserID,
			Amount:    s.winXP,
			Reason:    models.ReasonPickWin,
			GameID:    p.GameID,
			SlateDate: p.SlateDate,
		}, s.winPoints)
		if err != nil {
			return report, fmt.Errorf("award pick %s for %s: %w", p.GameID, p.UserID, err)
		}
		if awarded {
			report.Awarded++
		}
	}

	log.WithFields(log.Fields{
		"slate_date": slateDate,
		"wins":       report.Wins,
		"awarded":    report.Awarded,
		"pending":    report.Pending,
	}).Info("settled team picks")
	return report, nil
}
