package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/rewards"
	"golang.org/x/sync/errgroup"
)

type shopStore interface {
	ProfileStore
	CardStore
}

// ShopHandler loads the caller's balance, collection and the catalog concurrently.
func ShopHandler(store shopStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		var (
			user    *models.User
			owned   []models.OwnedCard
			catalog []models.ShopCard
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			user, err = store.GetOrCreateUser(ctx, profileSeed(s))
			return err
		})
		g.Go(func() (err error) {
			owned, err = store.OwnedCards(ctx, s.UserID)
			return err
		})
		g.Go(func() (err error) {
			catalog, err = store.ListCards(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"balance": user.AnimaPointsBalance,
			"owned":   owned,
			"cards":   catalog,
			"packs":   rewards.Tiers(),
		})
	}
}

// ShopCardsHandler lists the public catalog.
func ShopCardsHandler(store CardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := store.ListCards(r.Context())
		if err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "packs": rewards.Tiers()})
	}
}

type buyCardRequest struct {
	CardID string `json:"cardId"`
}

// BuyCardHandler spends the card's price on one copy.
func BuyCardHandler(profiles ProfileStore, shop CardShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		var req buyCardRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBodyError(w, r, err, codeInvalidBody, "invalid JSON body")
			return
		}
		cardID, err := uuid.Parse(req.CardID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidID, "cardId must be a uuid")
			return
		}
		if _, err := profiles.GetOrCreateUser(r.Context(), profileSeed(s)); err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}

		p, err := shop.BuyCard(r.Context(), s.UserID, cardID)
		if err != nil {
			writePurchaseError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, purchaseResponse(p))
	}
}

// OpenPackHandler spends a tier's price on a randomized pack.
func OpenPackHandler(profiles ProfileStore, shop CardShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		tier := chi.URLParam(r, "tier")
		if _, err := rewards.LookupTier(tier); err != nil {
			writeError(w, http.StatusBadRequest, codeUnknownTier, "unknown pack tier")
			return
		}
		if _, err := profiles.GetOrCreateUser(r.Context(), profileSeed(s)); err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}

		p, err := shop.OpenPack(r.Context(), s.UserID, tier)
		if err != nil {
			writePurchaseError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, purchaseResponse(p))
	}
}

func purchaseResponse(p *rewards.Purchase) map[string]any {
	return map[string]any{
		"ok":      true,
		"cards":   p.Cards,
		"balance": p.Entry.BalanceAfter,
		"entry":   p.Entry,
	}
}

func writePurchaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, codeInsufficientFunds, "not enough Anima Points")
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "card not found")
	case errors.Is(err, rewards.ErrUnknownTier):
		writeError(w, http.StatusBadRequest, codeUnknownTier, "unknown pack tier")
	case errors.Is(err, rewards.ErrEmptyCatalog):
		writeError(w, http.StatusServiceUnavailable, codeEmptyCatalog, "no cards available")
	case errors.Is(err, rewards.ErrLedgerFail):
		writeInternal(w, r, codeLedgerFail, err)
	default:
		writeInternal(w, r, codeInternal, err)
	}
}

type tileFlipRequest struct {
	Moves json.RawMessage `json:"moves"`
}

// TileFlipRewardHandler grants the fixed mini-game reward when the move count is acceptable.
func TileFlipRewardHandler(profiles ProfileStore, granter TileFlipGranter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mustSession(r)
		var req tileFlipRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeBodyError(w, r, err, codeInvalidMoves, "invalid moves")
			return
		}
		if _, err := rewards.ParseMoves(req.Moves); err != nil {
			writeMovesError(w, err)
			return
		}
		if _, err := profiles.GetOrCreateUser(r.Context(), profileSeed(s)); err != nil {
			writeInternal(w, r, codeInternal, err)
			return
		}

		entry, err := granter.Grant(r.Context(), s.UserID, req.Moves)
		switch {
		case errors.Is(err, rewards.ErrInvalidMoves), errors.Is(err, rewards.ErrTooManyMoves):
			writeMovesError(w, err)
			return
		case err != nil:
			writeInternal(w, r, codeLedgerFail, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"awarded": entry.Delta,
			"balance": entry.BalanceAfter,
			"entry":   entry,
		})
	}
}

func writeMovesError(w http.ResponseWriter, err error) {
	if errors.Is(err, rewards.ErrTooManyMoves) {
		writeError(w, http.StatusBadRequest, codeTooManyMoves, "too many moves")
		return
	}
	writeError(w, http.StatusBadRequest, codeInvalidMoves, "invalid moves")
}
