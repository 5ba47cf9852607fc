package picks

import "github.com/jason-s-yu/anima/internal/models"

// WinnerKey identifies a resolved game on a slate.
type WinnerKey struct {
	GameID    string
	SlateDate string
}

// WinnerIndex turns winner rows into a lookup keyed by (game, slate date).
func WinnerIndex(rows []models.ResultWinner) map[WinnerKey]*string {
	idx := make(map[WinnerKey]*string, len(rows))
	for _, r := range rows {
		idx[WinnerKey{GameID: r.GameID, SlateDate: r.SlateDate}] = r.WinnerTeamID
	}
	return idx
}

// OutcomeOf classifies a single pick. A nil winner is still PENDING.
func OutcomeOf(selectedTeamID string, winner *string) models.Outcome {
	switch {
	case winner == nil || *winner == "":
		return models.OutcomePending
	case *winner == selectedTeamID:
		return models.OutcomeWin
	default:
		return models.OutcomeLoss
	}
}

// Resolve joins picks against resolved winners. Picks without a winner row are PENDING.
func Resolve(picks []models.TeamPick, winners map[WinnerKey]*string) []models.PickWithOutcome {
	out := make([]models.PickWithOutcome, 0, len(picks))
	for _, p := range picks {
		w := winners[WinnerKey{GameID: p.GameID, SlateDate: p.SlateDate}]
		out = append(out, models.PickWithOutcome{
			TeamPick:     p,
			WinnerTeamID: w,
			Outcome:      OutcomeOf(p.SelectedTeamID, w),
		})
	}
	return out
}
