// Package sportsdata talks to the upstream NBA statistics API.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jason-s-yu/anima/internal/cache"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/sirupsen/logrus"
)

// maxStatPages bounds cursor pagination for a single game's stats.
const maxStatPages = 10

var ErrNotFound = errors.New("not found upstream")

// UpstreamError is a non-2xx answer from the sports API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("sports api returned %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.JSONCache
	logger  *logrus.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, c *cache.JSONCache, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		cache:   c,
		logger:  logger,
	}
}

type listMeta struct {
	NextCursor *int `json:"next_cursor"`
	PerPage    int  `json:"per_page"`
}

type listEnvelope[T any] struct {
	Data []T      `json:"data"`
	Meta listMeta `json:"meta"`
}

type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// FetchGames always hits the upstream for the games on date (YYYY-MM-DD).
func (c *Client) FetchGames(ctx context.Context, date string) ([]models.Game, error) {
	q := url.Values{}
	q.Add("dates[]", date)
	q.Set("per_page", "100")

	var env listEnvelope[models.Game]
	if err := c.get(ctx, "/games", q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []models.Game{}
	}
	return env.Data, nil
}

// Games is FetchGames behind the response cache.
func (c *Client) Games(ctx context.Context, date string) ([]models.Game, error) {
	return cache.Remember(ctx, c.cache, "games:"+date, func(ctx context.Context) ([]models.Game, error) {
		return c.FetchGames(ctx, date)
	})
}

// Game fetches a single game. Finished games are cached; live ones never are.
func (c *Client) Game(ctx context.Context, id int) (*models.Game, error) {
	key := "game:" + strconv.Itoa(id)
	var cached models.Game
	if hit, err := c.cache.Get(ctx, key, &cached); err != nil {
		c.logger.WithError(err).Warn("game cache read failed")
	} else if hit {
		return &cached, nil
	}

	var env itemEnvelope[models.Game]
	if err := c.get(ctx, "/games/"+strconv.Itoa(id), nil, &env); err != nil {
		return nil, err
	}
	if env.Data.IsFinal() {
		if err := c.cache.Set(ctx, key, env.Data); err != nil {
			c.logger.WithError(err).Warn("game cache write failed")
		}
	}
	return &env.Data, nil
}

// Stats returns every player stat line for a game, following cursors.
func (c *Client) Stats(ctx context.Context, gameID int) ([]models.StatLine, error) {
	out := []models.StatLine{}
	cursor := ""
	for page := 0; page < maxStatPages; page++ {
		q := url.Values{}
		q.Add("game_ids[]", strconv.Itoa(gameID))
		q.Set("per_page", "100")
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var env listEnvelope[models.StatLine]
		if err := c.get(ctx, "/stats", q, &env); err != nil {
			return nil, err
		}
		out = append(out, env.Data...)
		if env.Meta.NextCursor == nil {
			return out, nil
		}
		cursor = strconv.Itoa(*env.Meta.NextCursor)
	}
	c.logger.WithField("game_id", gameID).Warn("stat pagination truncated")
	return out, nil
}

// BoxScore combines a game with its stat lines split by side.
func (c *Client) BoxScore(ctx context.Context, gameID int) (*models.BoxScore, error) {
	g, err := c.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	key := "boxscore:" + strconv.Itoa(gameID)
	if g.IsFinal() {
		var cached models.BoxScore
		if hit, _ := c.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	lines, err := c.Stats(ctx, gameID)
	if err != nil {
		return nil, err
	}
	box := &models.BoxScore{Game: *g, Home: []models.StatLine{}, Visitor: []models.StatLine{}}
	for _, l := range lines {
		switch l.Team.ID {
		case g.HomeTeam.ID:
			box.Home = append(box.Home, l)
		case g.VisitorTeam.ID:
			box.Visitor = append(box.Visitor, l)
		}
	}
	if g.IsFinal() {
		if err := c.cache.Set(ctx, key, box); err != nil {
			c.logger.WithError(err).Warn("boxscore cache write failed")
		}
	}
	return box, nil
}
