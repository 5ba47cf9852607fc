package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/roster"
	"github.com/jason-s-yu/anima/internal/slate"
	"github.com/jason-s-yu/anima/internal/sportsdata"
)

// PlayersHandler looks a roster up by ?teamId=, ?abbr= or ?name=. A miss is an empty list.
func PlayersHandler(rosters RosterSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ref := roster.TeamRef{ID: q.Get("teamId"), Abbr: q.Get("abbr"), Name: q.Get("name")}
		if strings.TrimSpace(ref.ID+ref.Abbr+ref.Name) == "" {
			writeError(w, http.StatusBadRequest, codeMissingTeam, "teamId, abbr or name is required")
			return
		}

		file, err := rosters.Load(r.Context())
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		season := q.Get("season")
		if season != "" && season != file.Season {
			writeJSON(w, http.StatusOK, map[string]any{"season": season, "team": "", "players": []models.RosterPlayer{}})
			return
		}

		players, key, err := rosters.Players(r.Context(), ref)
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"season": file.Season, "team": key, "players": players})
	}
}

type gameView struct {
	models.Game
	Tipoff string `json:"tipoff"`
}

// GamesHandler lists the games of ?date= (default today ET) with tip-off localized to ?tz= and ?locale=.
func GamesHandler(sports GameSource, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date := q.Get("date")
		if date == "" {
			date = slate.Today(now())
		}
		if _, err := slate.ParseDate(date, slate.Eastern()); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, err.Error())
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
		locale := "en"
		if strings.HasPrefix(strings.ToLower(q.Get("locale")), "it") {
			locale = "it"
		}

		games, err := sports.Games(r.Context(), date)
		if err != nil {
			writeInternal(w, r, codeUpstreamFail, err)
			return
		}
		views := make([]gameView, 0, len(games))
		for _, g := range games {
			v := gameView{Game: g}
			if !g.Datetime.IsZero() {
				v.Tipoff = sportsdata.FormatTipoff(g.Datetime, loc, locale)
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":   date,
			"tz":     loc.String(),
			"locale": locale,
			"games":  views,
		})
	}
}

// BoxScoreHandler returns the box score of ?gameId=.
func BoxScoreHandler(sports GameSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("gameId")
		if raw == "" {
			writeError(w, http.StatusBadRequest, codeMissingGameID, "gameId is required")
			return
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidGameID, "gameId must be a positive integer")
			return
		}

		box, err := sports.BoxScore(r.Context(), id)
		switch {
		case errors.Is(err, sportsdata.ErrNotFound):
			writeError(w, http.StatusNotFound, codeNotFound, "game not found")
			return
		case err != nil:
			writeInternal(w, r, codeUpstreamFail, err)
			return
		}
		writeJSON(w, http.StatusOK, box)
	}
}
