package models

import (
	"time"

	"github.com/google/uuid"
)

// Card rarities, lowest to highest.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// ShopCard is immutable catalog data.
type ShopCard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Rarity      string    `json:"rarity"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	AccentColor string    `json:"accent_color"`
	Category    string    `json:"category"`
	Conference  string    `json:"conference"`
}

// OwnedCard groups a user's user_cards rows by card; quantity is the row count.
type OwnedCard struct {
	Card           ShopCard  `json:"card"`
	Quantity       int       `json:"quantity"`
	LastAcquiredAt time.Time `json:"last_acquired_at"`
}
