package rewards

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/models"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownTier  = errors.New("unknown pack tier")
	ErrEmptyCatalog = errors.New("card catalog is empty")
)

// Catalog is the card storage the shop needs.
type Catalog interface {
	ListCards(ctx context.Context) ([]models.ShopCard, error)
	GetCard(ctx context.Context, id uuid.UUID) (*models.ShopCard, error)
	PurchaseCards(ctx context.Context, userID uuid.UUID, cost int64, cardIDs []uuid.UUID, reason, source string) (*models.LedgerEntry, error)
}

// PackTier describes one gacha pack: its price, how many cards it yields, and
// the relative odds of each rarity.
type PackTier struct {
	Name    string         `json:"name"`
	Price   int64          `json:"price"`
	Cards   int            `json:"cards"`
	Weights map[string]int `json:"weights"`
}

var rarityOrder = []string{models.RarityCommon, models.RarityRare, models.RarityEpic, models.RarityLegendary}

var packTiers = map[string]PackTier{
	"pearl": {Name: "pearl", Price: 150, Cards: 3, Weights: map[string]int{
		models.RarityCommon: 75, models.RarityRare: 20, models.RarityEpic: 5,
	}},
	"silver": {Name: "silver", Price: 300, Cards: 4, Weights: map[string]int{
		models.RarityCommon: 55, models.RarityRare: 30, models.RarityEpic: 12, models.RarityLegendary: 3,
	}},
	"gold": {Name: "gold", Price: 600, Cards: 5, Weights: map[string]int{
		models.RarityCommon: 35, models.RarityRare: 35, models.RarityEpic: 22, models.RarityLegendary: 8,
	}},
}

// Tiers lists pack tiers cheapest first.
func Tiers() []PackTier {
	out := make([]PackTier, 0, len(packTiers))
	for _, t := range packTiers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// LookupTier resolves a tier name case-insensitively.
func LookupTier(name string) (PackTier, error) {
	t, ok := packTiers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PackTier{}, ErrUnknownTier
	}
	return t, nil
}

// Purchase is the result of a buy or pack open.
type Purchase struct {
	Cards []models.ShopCard   `json:"cards"`
	Entry *models.LedgerEntry `json:"ledger_entry"`
}

// Shop sells single cards and opens packs.
type Shop struct {
	catalog Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewShop uses rng for pack draws; nil seeds one from the clock.
func NewShop(catalog Catalog, rng *rand.Rand) *Shop {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Shop{catalog: catalog, rng: rng}
}

// BuyCard debits the card's price and grants one copy.
func (s *Shop) BuyCard(ctx context.Context, userID, cardID uuid.UUID) (*Purchase, error) {
	card, err := s.catalog.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	entry, err := s.catalog.PurchaseCards(ctx, userID, card.Price, []uuid.UUID{card.ID}, models.ReasonShopPurchase, "shop")
	if err != nil {
		return nil, purchaseErr(err)
	}
	return &Purchase{Cards: []models.ShopCard{*card}, Entry: entry}, nil
}

// OpenPack debits the tier price and grants tier.Cards weighted draws in one transaction.
func (s *Shop) OpenPack(ctx context.Context, userID uuid.UUID, tierName string) (*Purchase, error) {
	tier, err := LookupTier(tierName)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	drawn, err := s.Draw(tier, catalog)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(drawn))
	for i, c := range drawn {
		ids[i] = c.ID
	}
	entry, err := s.catalog.PurchaseCards(ctx, userID, tier.Price, ids, models.ReasonPackOpen, "pack:"+tier.Name)
	if err != nil {
		return nil, purchaseErr(err)
	}

	log.WithFields(log.Fields{"user_id": userID, "tier": tier.Name, "cards": len(drawn)}).Debug("opened pack")
	return &Purchase{Cards: drawn, Entry: entry}, nil
}

// Draw picks tier.Cards cards: a rarity by weight, then a uniform card of that rarity.
// A rarity with no cards in the catalog falls back to the whole catalog.
func (s *Shop) Draw(tier PackTier, catalog []models.ShopCard) ([]models.ShopCard, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	byRarity := make(map[string][]models.ShopCard, len(rarityOrder))
	for _, c := range catalog {
		byRarity[c.Rarity] = append(byRarity[c.Rarity], c)
	}
	total := 0
	for _, r := range rarityOrder {
		total += tier.Weights[r]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ShopCard, 0, tier.Cards)
	for i := 0; i < tier.Cards; i++ {
		pool := catalog
		if total > 0 {
			roll := s.rng.IntN(total)
			for _, r := range rarityOrder {
				roll -= tier.Weights[r]
				if roll < 0 {
					if len(byRarity[r]) > 0 {
						pool = byRarity[r]
					}
					break
				}
			}
		}
		out = append(out, pool[s.rng.IntN(len(pool))])
	}
	return out, nil
}

func purchaseErr(err error) error {
	if errors.Is(err, models.ErrInsufficientFunds) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrLedgerFail, err)
}
