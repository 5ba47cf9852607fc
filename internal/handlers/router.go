package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/auth"
	"github.com/jason-s-yu/anima/internal/middleware"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/picks"
	"github.com/jason-s-yu/anima/internal/rewards"
	"github.com/jason-s-yu/anima/internal/roster"
	"github.com/sirupsen/logrus"
)

type ProfileStore interface {
	GetOrCreateUser(ctx context.Context, seed models.User) (*models.User, error)
}

type XPStore interface {
	WeeklyRanking(ctx context.Context, weekStart string, limit int) ([]models.WeeklyXP, error)
	UserWeeklyXP(ctx context.Context, userID uuid.UUID, weekStart string) (models.WeeklyXP, error)
}

type PointsStore interface {
	SumPoints(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.PointsSummary, error)
	LedgerHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type CardStore interface {
	ListCards(ctx context.Context) ([]models.ShopCard, error)
	OwnedCards(ctx context.Context, userID uuid.UUID) ([]models.OwnedCard, error)
}

type AdminStore interface {
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AuditLedger(ctx context.Context) ([]models.LedgerMismatch, error)
	CreditPoints(ctx context.Context, userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error)
	UpsertResults(ctx context.Context, results []models.GameResult) error
}

// Store is everything the routes read or write directly.
type Store interface {
	ProfileStore
	XPStore
	PointsStore
	CardStore
	AdminStore
}

// RoleStore resolves profile roles with the elevated credential.
type RoleStore interface {
	GetUserRole(ctx context.Context, id uuid.UUID) (string, error)
}

type RosterSource interface {
	Load(ctx context.Context) (*roster.File, error)
	Players(ctx context.Context, ref roster.TeamRef) ([]models.RosterPlayer, string, error)
}

type GameSource interface {
	Games(ctx context.Context, date string) ([]models.Game, error)
	FetchGames(ctx context.Context, date string) ([]models.Game, error)
	BoxScore(ctx context.Context, gameID int) (*models.BoxScore, error)
}

type PickService interface {
	SaveTeamPicks(ctx context.Context, userID uuid.UUID, slateDate string, in []picks.PickInput) ([]models.TeamPick, error)
	WithOutcome(ctx context.Context, userID uuid.UUID, slateDate string) ([]models.PickWithOutcome, error)
	Settle(ctx context.Context, slateDate string) (*picks.SettleReport, error)
}

type TileFlipGranter interface {
	Grant(ctx context.Context, userID uuid.UUID, moves json.RawMessage) (*models.LedgerEntry, error)
}

type CardShop interface {
	BuyCard(ctx context.Context, userID, cardID uuid.UUID) (*rewards.Purchase, error)
	OpenPack(ctx context.Context, userID uuid.UUID, tier string) (*rewards.Purchase, error)
}

// Deps wires the router.
type Deps struct {
	Logger         *logrus.Logger
	Store          Store
	Roles          RoleStore
	Sessions       *auth.Verifier
	Rosters        RosterSource
	Sports         GameSource
	Picks          PickService
	TileFlip       TileFlipGranter
	Shop           CardShop
	CronSecret     string
	AllowedOrigins []string
	Now            func() time.Time
}

// NewRouter mounts every route.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cronSecretHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", HealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard/weekly", WeeklyLeaderboardHandler(d.Store, d.Now))
		r.Get("/weekly-xp", WeeklyXPHandler(d.Store, d.Now))
		r.Get("/players", PlayersHandler(d.Rosters))
		r.Get("/games", GamesHandler(d.Sports, d.Now))
		r.Get("/boxscore", BoxScoreHandler(d.Sports))
		r.Get("/shop/cards", ShopCardsHandler(d.Store))

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(d.Sessions))

			r.Get("/me", MeHandler(d.Store))
			r.Get("/me/weekly-xp", MyWeeklyXPHandler(d.Store, d.Now))
			r.Get("/me/anima-points", MyAnimaPointsHandler(d.Store, d.Now))
			r.Get("/me/cards", MyCardsHandler(d.Store))
			r.Get("/me/ledger", MyLedgerHandler(d.Store))
			r.Get("/points-by-date", PointsByDateHandler(d.Store))
			r.Get("/my-picks-with-outcome", MyPicksWithOutcomeHandler(d.Picks, d.Now))
			r.Post("/picks/teams", SaveTeamPicksHandler(d.Store, d.Picks))
			r.Get("/shop", ShopHandler(d.Store))
			r.Post("/shop/buy", BuyCardHandler(d.Store, d.Shop))
			r.Post("/shop/packs/{tier}/open", OpenPackHandler(d.Store, d.Shop))
			r.Post("/tile-flip/reward", TileFlipRewardHandler(d.Store, d.TileFlip))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(d.Sessions, d.Roles, d.CronSecret))

			r.Get("/users", AdminUsersHandler(d.Store))
			r.Get("/ledger/audit", AdminLedgerAuditHandler(d.Store))
			r.Post("/points/grant", AdminGrantPointsHandler(d.Store))
			r.Post("/results/sync", AdminSyncResultsHandler(d.Store, d.Sports, d.Picks, d.Now))
			r.Post("/picks/settle", AdminSettlePicksHandler(d.Picks, d.Now))
		})
	})
	return r
}

// HealthHandler answers liveness checks.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
