package handlers

import (
	"net/http"
	"time"

	"github.com/jason-s-yu/anima/internal/slate"
)

// MeHandler returns the caller's profile, creating it on first visit.
func MeHandler(store ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.GetOrCreateUser(r.Context(), profileSeed(mustSession(r)))
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type animaPointsStore interface {
	ProfileStore
	PointsStore
}

// MyAnimaPointsHandler sums the caller's ledger over one Eastern slate date (default today).
func MyAnimaPointsHandler(store animaPointsStore, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		date := r.URL.Query().Get("slateDate")
		if date == "" {
			date = slate.Today(now())
		}
		start, end, err := slate.DayWindow(date, slate.Eastern())
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		}

		u, err := store.GetOrCreateUser(r.Context(), profileSeed(s))
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		sum, err := store.SumPoints(r.Context(), s.UserID, start, end)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"slateDate": date,
			"points":    sum.Total,
			"entries":   sum.Entries,
			"balance":   u.AnimaPointsBalance,
		})
	}
}

// PointsByDateHandler sums the caller's ledger over ?date= in ?tz= (default US Eastern).
func PointsByDateHandler(store PointsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		q := r.URL.Query()
		date := q.Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, codeMissingDate, "date is required")
			return
		}
		loc := slate.Eastern()
		if tz := q.Get("tz"); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidTZ, "unknown timezone")
				return
			}
			loc = l
		}
		start, end, err := slate.DayWindow(date, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
			return
		}

		sum, err := store.SumPoints(r.Context(), s.UserID, start, end)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":    date,
			"tz":      loc.String(),
			"from":    start,
			"to":      end,
			"total":   sum.Total,
			"entries": sum.Entries,
		})
	}
}

// MyCardsHandler lists the caller's collection.
func MyCardsHandler(store CardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owned, err := store.OwnedCards(r.Context(), mustSession(r).UserID)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": owned})
	}
}

const maxLedgerPage = 200

// MyLedgerHandler lists the caller's newest ledger entries.
func MyLedgerHandler(store PointsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 50, 1, maxLedgerPage)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be an integer")
			return
		}
		entries, err := store.LedgerHistory(r.Context(), mustSession(r).UserID, limit)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}
