// Package rewards owns every Anima Points grant and spend: the tile-flip mini-game,
// single-card shop purchases and gacha packs.
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/models"
)

const (
	TileFlipReward   int64 = 10
	TileFlipMaxMoves       = 15
)

var (
	ErrInvalidMoves = errors.New("moves must be a non-negative integer")
	ErrTooManyMoves = errors.New("too many moves for a reward")
	// ErrLedgerFail wraps any failure of the balance/ledger write.
	ErrLedgerFail = errors.New("ledger write failed")
)

// Ledger credits or debits a user's balance and appends the matching ledger row.
type Ledger interface {
	CreditPoints(ctx context.Context, userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error)
}

// ParseMoves accepts a JSON integer or a string holding one. Anything else is ErrInvalidMoves;
// counts above TileFlipMaxMoves are ErrTooManyMoves.
func ParseMoves(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrInvalidMoves
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ErrInvalidMoves
		}
		text = strings.TrimSpace(text)
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, ErrInvalidMoves
		}
		text = n.String()
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 {
		return 0, ErrInvalidMoves
	}
	if f > TileFlipMaxMoves {
		return 0, ErrTooManyMoves
	}
	return int(f), nil
}

// TileFlip grants the fixed mini-game reward.
type TileFlip struct {
	ledger Ledger
}

func NewTileFlip(ledger Ledger) *TileFlip {
	return &TileFlip{ledger: ledger}
}

// Grant validates moves and credits TileFlipReward. Nothing is written on a validation error.
func (t *TileFlip) Grant(ctx context.Context, userID uuid.UUID, moves json.RawMessage) (*models.LedgerEntry, error) {
	if _, err := ParseMoves(moves); err != nil {
		return nil, err
	}
	entry, err := t.ledger.CreditPoints(ctx, userID, TileFlipReward, models.ReasonTileFlip)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerFail, err)
	}
	return entry, nil
}
