package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/anima/internal/models"
)

const cardColumns = `c.id, c.name, c.description, c.rarity, c.price, c.image_url, c.accent_color, c.category, c.conference`

func scanCard(row pgx.Row, extra ...any) (*models.ShopCard, error) {
	var c models.ShopCard
	dest := append([]any{&c.ID, &c.Name, &c.Description, &c.Rarity, &c.Price, &c.ImageURL, &c.AccentColor, &c.Category, &c.Conference}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCards returns the whole catalog ordered by price.
func (s *Store) ListCards(ctx context.Context) ([]models.ShopCard, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cardColumns+` FROM shop_cards c ORDER BY c.price, c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop cards: %w", err)
	}
	defer rows.Close()

	cards := []models.ShopCard{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*models.ShopCard, error) {
	c, err := scanCard(s.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM shop_cards c WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop card %s: %w", id, err)
	}
	return c, nil
}

// OwnedCards groups the user's cards; quantity is the number of user_cards rows.
func (s *Store) OwnedCards(ctx context.Context, userID uuid.UUID) ([]models.OwnedCard, error) {
	q := `
		SELECT ` + cardColumns + `, COUNT(uc.id), MAX(uc.acquired_at)
		FROM user_cards uc
		JOIN shop_cards c ON c.id = uc.card_id
		WHERE uc.user_id = $1
		GROUP BY c.id
		ORDER BY MAX(uc.acquired_at) DESC
	`
	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards of %s: %w", userID, err)
	}
	defer rows.Close()

	owned := []models.OwnedCard{}
	for rows.Next() {
		var o models.OwnedCard
		c, err := scanCard(rows, &o.Quantity, &o.LastAcquiredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan owned card: %w", err)
		}
		o.Card = *c
		owned = append(owned, o)
	}
	return owned, rows.Err()
}

// PurchaseCards debits cost, grants every card in cardIDs and appends the ledger row, all or nothing.
func (s *Store) PurchaseCards(ctx context.Context, userID uuid.UUID, cost int64, cardIDs []uuid.UUID, reason, source string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		entry, err = creditPoints(ctx, tx, userID, -cost, reason)
		if err != nil {
			return err
		}
		for _, id := range cardIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO user_cards (user_id, card_id, source) VALUES ($1, $2, $3)`, userID, id, source); err != nil {
				return fmt.Errorf("grant card %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purchase cards for %s: %w", userID, err)
	}
	return entry, nil
}
