package handlers

import (
	"net/http"
	"time"

	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/slate"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

type weeklyResponse struct {
	WeekStart string            `json:"weekStart"`
	FellBack  bool              `json:"fellBack,omitempty"`
	Entries   []models.WeeklyXP `json:"entries"`
}

// WeeklyLeaderboardHandler ranks the current Eastern week.
func WeeklyLeaderboardHandler(store XPStore, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", defaultLeaderboardLimit, 1, maxLeaderboardLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be an integer")
			return
		}
		week := slate.Format(slate.WeekStart(now()))
		entries, err := store.WeeklyRanking(r.Context(), week, limit)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, weeklyResponse{WeekStart: week, Entries: entries})
	}
}

// WeeklyXPHandler returns totals for ?weekStart=, falling back to the current week
// when the parameter is missing or invalid.
func WeeklyXPHandler(store XPStore, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", maxLeaderboardLimit, 1, maxLeaderboardLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be an integer")
			return
		}
		week, fellBack := slate.ResolveWeekStart(r.URL.Query().Get("weekStart"), now())
		entries, err := store.WeeklyRanking(r.Context(), week, limit)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, weeklyResponse{WeekStart: week, FellBack: fellBack, Entries: entries})
	}
}

// MyWeeklyXPHandler returns the caller's XP and rank. A malformed weekStart is a 400.
func MyWeeklyXPHandler(store XPStore, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		week, err := slate.StrictWeekStart(r.URL.Query().Get("weekStart"), now())
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		}
		mine, err := store.UserWeeklyXP(r.Context(), s.UserID, week)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"weekStart": week,
			"xp":        mine.XP,
			"rank":      mine.Rank,
		})
	}
}
