package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/auth"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/slate"
	"github.com/jason-s-yu/anima/internal/sportsdata"
	log "github.com/sirupsen/logrus"
)

const maxAdminPage = 500

// AdminUsersHandler pages through profiles with balances.
func AdminUsersHandler(store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 100, 1, maxAdminPage)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be an integer")
			return
		}
		offset, err := queryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "offset must be an integer")
			return
		}
		users, err := store.ListUsers(r.Context(), limit, offset)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users, "limit": limit, "offset": offset})
	}
}

// AdminLedgerAuditHandler lists users whose balance disagrees with their latest ledger row.
func AdminLedgerAuditHandler(store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mismatches, err := store.AuditLedger(r.Context())
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(mismatches), "mismatches": mismatches})
	}
}

type grantPointsRequest struct {
	UserID string `json:"userId"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// AdminGrantPointsHandler applies a manual credit or debit through the ledger.
func AdminGrantPointsHandler(store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantPointsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBodyError(w, r, err, codeInvalidBody, "invalid JSON body")
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "userId must be a uuid")
			return
		}
		if req.Delta == 0 {
			writeError(w, http.StatusBadRequest, codeInvalidBody, "delta must be non-zero")
			return
		}
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = models.ReasonAdminGrant
		}

		if _, err := store.GetUserByID(r.Context(), userID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				writeError(w, http.StatusNotFound, codeNotFound, "user not found")
				return
			}
			writeInternal(w, r, codeInternal, err)
			return
		}
		entry, err := store.CreditPoints(r.Context(), userID, req.Delta, reason)
		switch {
		case errors.Is(err, models.ErrInsufficientFunds):
			writeError(w, http.StatusBadRequest, codeInsufficientFunds, "debit exceeds balance")
			return
		case err != nil:
			writeInternal(w, r, codeLedgerFail, err)
			return
		}

		actor := "cron"
		if s, ok := auth.FromContext(r.Context()); ok {
			actor = s.UserID.String()
		}
		log.WithFields(log.Fields{"actor": actor, "user_id": userID, "delta": req.Delta, "reason": reason}).Info("admin points grant")
		writeJSON(w, http.StatusOK, entry)
	}
}

// AdminSyncResultsHandler pulls scores for ?date= (default yesterday ET) into results_team.
// With ?settle=true it also settles that slate.
func AdminSyncResultsHandler(store AdminStore, sports GameSource, svc PickService, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = slate.Today(now().AddDate(0, 0, -1))
		}
		if _, err := slate.ParseDate(date, slate.Eastern()); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		}

		games, err := sports.FetchGames(r.Context(), date)
		if err != nil {
			writeInternal(w, r, codeUpstreamFail, err)
			return
		}
		results := make([]models.GameResult, 0, len(games))
		final := 0
		for _, g := range games {
			res := sportsdata.ResultFromGame(g, date)
			if res.WinnerTeamID != nil {
				final++
			}
			results = append(results, res)
		}
		if len(results) > 0 {
			if err := store.UpsertResults(r.Context(), results); err != nil {
				writeInternal(w, r, codeInternal, err)
				return
			}
		}

		resp := map[string]any{"date": date, "games": len(results), "final": final}
		if r.URL.Query().Get("settle") == "true" {
			report, err := svc.Settle(r.Context(), date)
			if err != nil {
				writeInternal(w, r, codeInternal, err)
				return
			}
			resp["settlement"] = report
		}
		log.WithFields(log.Fields{"date": date, "games": len(results), "final": final}).Info("synced results")
		writeJSON(w, http.StatusOK, resp)
	}
}

type settleRequest struct {
	SlateDate string `json:"slateDate"`
}

// AdminSettlePicksHandler awards XP and points for WIN picks of a slate (default yesterday ET).
func AdminSettlePicksHandler(svc PickService, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("slateDate")
		if date == "" && r.ContentLength != 0 {
			var req settleRequest
			if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
				writeBodyError(w, r, err, codeInvalidBody, "invalid JSON body")
				return
			}
			date = req.SlateDate
		}
		if date == "" {
			date = slate.Today(now().AddDate(0, 0, -1))
		}

		report, err := svc.Settle(r.Context(), date)
		switch {
		case errors.Is(err, slate.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		case err != nil:
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
