package sportsdata

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jason-s-yu/anima/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lakers  = models.Team{ID: 14, Abbreviation: "LAL", FullName: "Los Angeles Lakers"}
	celtics = models.Team{ID: 2, Abbreviation: "BOS", FullName: "Boston Celtics"}
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeGzipJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Encoding", "gzip")
	gz := gzip.NewWriter(w)
	require.NoError(t, json.NewEncoder(gz).Encode(v))
	require.NoError(t, gz.Close())
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "test-key", NewHTTPClient(5*time.Second, quietLogger()), nil, quietLogger())
}

func TestClient_GamesDecodesGzipAndSendsKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, []string{"2024-05-15"}, r.URL.Query()["dates[]"])
		writeGzipJSON(t, w, map[string]any{
			"data": []models.Game{{ID: 1, Status: "Final", HomeTeam: lakers, VisitorTeam: celtics, HomeTeamScore: 110, VisitorTeamScore: 99}},
			"meta": map[string]any{"per_page": 100},
		})
	})

	games, err := c.Games(context.Background(), "2024-05-15")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "LAL", games[0].HomeTeam.Abbreviation)
	assert.True(t, games[0].IsFinal())
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/games/404" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Game(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Game(context.Background(), 1)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
}

func TestClient_BoxScoreFollowsCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/games/7":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": models.Game{ID: 7, Status: "Final", HomeTeam: lakers, VisitorTeam: celtics}})
		case "/stats":
			if r.URL.Query().Get("cursor") == "" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": []models.StatLine{{Team: lakers, Pts: 30}, {Team: celtics, Pts: 25}},
					"meta": map[string]any{"next_cursor": 2},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []models.StatLine{{Team: lakers, Pts: 12}},
				"meta": map[string]any{"next_cursor": nil},
			})
		default:
			http.NotFound(w, r)
		}
	})

	box, err := c.BoxScore(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, box.Game.ID)
	assert.Len(t, box.Home, 2)
	assert.Len(t, box.Visitor, 1)
}

func TestResultFromGame(t *testing.T) {
	final := models.Game{ID: 9, Status: "Final", HomeTeam: lakers, VisitorTeam: celtics, HomeTeamScore: 101, VisitorTeamScore: 104}
	r := ResultFromGame(final, "2024-05-15")
	assert.Equal(t, "9", r.GameID)
	require.NotNil(t, r.WinnerTeamID)
	assert.Equal(t, "2", *r.WinnerTeamID)

	live := final
	live.Status = "4th Qtr"
	assert.Nil(t, ResultFromGame(live, "2024-05-15").WinnerTeamID)

	tied := final
	tied.VisitorTeamScore = 101
	assert.Nil(t, ResultFromGame(tied, "2024-05-15").WinnerTeamID)
}

func TestFormatTipoff(t *testing.T) {
	ts := time.Date(2024, 1, 16, 0, 30, 0, 0, time.UTC) // 19:30 Eastern on Monday the 15th
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	assert.Equal(t, "Mon Jan 15, 7:30 PM", FormatTipoff(ts, ny, "en"))
	assert.Equal(t, "mar 16 gen, 01:30", FormatTipoff(ts, rome, "it"))
	assert.Equal(t, "Mon Jan 15, 7:30 PM", FormatTipoff(ts, ny, "fr"))
}
