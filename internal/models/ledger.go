package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger reasons written by this service.
const (
	ReasonTileFlip     = "tile_flip"
	ReasonShopPurchase = "shop_purchase"
	ReasonPackOpen     = "pack_open"
	ReasonPickWin      = "pick_win"
	ReasonAdminGrant   = "admin_grant"
)

// LedgerEntry is one append-only row of anima_points_ledger.
type LedgerEntry struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Delta        int64     `json:"delta"`
	BalanceAfter int64     `json:"balance_after"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// PointsSummary is a ledger sum over a time window.
type PointsSummary struct {
	Total   int64 `json:"total"`
	Entries int   `json:"entries"`
}

// LedgerMismatch flags a user whose running balance disagrees with the latest ledger snapshot.
type LedgerMismatch struct {
	UserID             uuid.UUID `json:"user_id"`
	Email              string    `json:"email"`
	Balance            int64     `json:"balance"`
	LatestBalanceAfter *int64    `json:"latest_balance_after"`
	LedgerSum          int64     `json:"ledger_sum"`
}
