package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jason-s-yu/anima/internal/picks"
	"github.com/jason-s-yu/anima/internal/slate"
)

// MyPicksWithOutcomeHandler lists the caller's picks for ?slateDate= (default today ET)
// with WIN / LOSS / PENDING attached.
func MyPicksWithOutcomeHandler(svc PickService, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		date := r.URL.Query().Get("slateDate")
		if date == "" {
			date = slate.Today(now())
		}
		if _, err := slate.ParseDate(date, slate.Eastern()); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		}

		out, err := svc.WithOutcome(r.Context(), s.UserID, date)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slateDate": date, "picks": out})
	}
}

type saveTeamPicksRequest struct {
	SlateDate string            `json:"slateDate"`
	Picks     []picks.PickInput `json:"picks"`
}

// SaveTeamPicksHandler upserts the caller's picks for one slate date.
func SaveTeamPicksHandler(profiles ProfileStore, svc PickService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		var req saveTeamPicksRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBodyError(w, r, err, codeInvalidBody, "invalid JSON body")
			return
		}
		if _, err := profiles.GetOrCreateUser(r.Context(), profileSeed(s)); err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}

		saved, err := svc.SaveTeamPicks(r.Context(), s.UserID, req.SlateDate, req.Picks)
		switch {
		case errors.Is(err, slate.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		case errors.Is(err, picks.ErrNoPicks), errors.Is(err, picks.ErrInvalidPick):
			writeError(w, http.StatusBadRequest, codeInvalidPick, err.Error())
			return
		case err != nil:
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slateDate": req.SlateDate, "saved": len(saved), "picks": saved})
	}
}
