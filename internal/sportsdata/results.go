package sportsdata

import (
	"strconv"

	"github.com/jason-s-yu/anima/internal/models"
)

// ResultFromGame converts an upstream game into a stored result for slateDate.
// The winner is only set once the game is final and not tied.
func ResultFromGame(g models.Game, slateDate string) models.GameResult {
	r := models.GameResult{
		GameID:        strconv.Itoa(g.ID),
		SlateDate:     slateDate,
		HomeTeamID:    strconv.Itoa(g.HomeTeam.ID),
		VisitorTeamID: strconv.Itoa(g.VisitorTeam.ID),
		HomeScore:     g.HomeTeamScore,
		VisitorScore:  g.VisitorTeamScore,
		Status:        g.Status,
	}
	if !g.IsFinal() {
		return r
	}
	switch {
	case g.HomeTeamScore > g.VisitorTeamScore:
		r.WinnerTeamID = &r.HomeTeamID
	case g.VisitorTeamScore > g.HomeTeamScore:
		r.WinnerTeamID = &r.VisitorTeamID
	}
	return r
}
