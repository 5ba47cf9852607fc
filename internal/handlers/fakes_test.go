package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/jason-s-yu/anima/internal/sportsdata"
)

// memStore is an in-memory stand-in for the postgres store. It also satisfies the
// repositories behind picks.Service and rewards.
type memStore struct {
	mu      sync.Mutex
	now     func() time.Time
	users   map[uuid.UUID]*models.User
	ledger  []models.LedgerEntry
	cards   []models.ShopCard
	owned   map[uuid.UUID][]uuid.UUID
	picks   []models.TeamPick
	results map[string]models.GameResult
	xp      map[string]models.XPEvent
	weekly  map[string][]models.WeeklyXP

	failLedger  error
	failProfile error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:     now,
		users:   map[uuid.UUID]*models.User{},
		owned:   map[uuid.UUID][]uuid.UUID{},
		results: map[string]models.GameResult{},
		xp:      map[string]models.XPEvent{},
		weekly:  map[string][]models.WeeklyXP{},
	}
}

func (m *memStore) addUser(email, role string, balance int64) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email, FullName: email, Role: role, AnimaPointsBalance: balance}
	m.users[u.ID] = u
	return u
}

func (m *memStore) balance(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].AnimaPointsBalance
}

func (m *memStore) GetOrCreateUser(_ context.Context, seed models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return nil, m.failProfile
	}
	if u, ok := m.users[seed.ID]; ok {
		cp := *u
		return &cp, nil
	}
	if seed.Role == "" {
		seed.Role = models.RoleUser
	}
	m.users[seed.ID] = &seed
	cp := seed
	return &cp, nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserRole(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return "", models.ErrNotFound
	}
	return u.Role, nil
}

func (m *memStore) ListUsers(_ context.Context, limit, offset int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return []models.User{}, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (m *memStore) CreditPoints(_ context.Context, userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creditLocked(userID, delta, reason)
}

func (m *memStore) creditLocked(userID uuid.UUID, delta int64, reason string) (*models.LedgerEntry, error) {
	if m.failLedger != nil {
		return nil, m.failLedger
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	next := u.AnimaPointsBalance + delta
	if next < 0 {
		return nil, models.ErrInsufficientFunds
	}
	u.AnimaPointsBalance = next
	e := models.LedgerEntry{
		ID:           int64(len(m.ledger) + 1),
		UserID:       userID,
		Delta:        delta,
		BalanceAfter: next,
		Reason:       reason,
		CreatedAt:    m.now(),
	}
	m.ledger = append(m.ledger, e)
	return &e, nil
}

func (m *memStore) SumPoints(_ context.Context, userID uuid.UUID, from, to time.Time) (models.PointsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.PointsSummary
	for _, e := range m.ledger {
		if e.UserID == userID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			s.Total += e.Delta
			s.Entries++
		}
	}
	return s, nil
}

func (m *memStore) LedgerHistory(_ context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LedgerEntry{}
	for i := len(m.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if m.ledger[i].UserID == userID {
			out = append(out, m.ledger[i])
		}
	}
	return out, nil
}

func (m *memStore) AuditLedger(_ context.Context) ([]models.LedgerMismatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LedgerMismatch{}
	for _, u := range m.users {
		var latest *int64
		var sum int64
		for _, e := range m.ledger {
			if e.UserID == u.ID {
				ba := e.BalanceAfter
				latest = &ba
				sum += e.Delta
			}
		}
		if latest != nil && *latest != u.AnimaPointsBalance {
			out = append(out, models.LedgerMismatch{UserID: u.ID, Email: u.Email, Balance: u.AnimaPointsBalance, LatestBalanceAfter: latest, LedgerSum: sum})
		}
	}
	return out, nil
}

func (m *memStore) ListCards(_ context.Context) ([]models.ShopCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ShopCard{}, m.cards...), nil
}

func (m *memStore) GetCard(_ context.Context, id uuid.UUID) (*models.ShopCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) OwnedCards(_ context.Context, userID uuid.UUID) ([]models.OwnedCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[uuid.UUID]int{}
	for _, id := range m.owned[userID] {
		counts[id]++
	}
	out := []models.OwnedCard{}
	for _, c := range m.cards {
		if n := counts[c.ID]; n > 0 {
			out = append(out, models.OwnedCard{Card: c, Quantity: n, LastAcquiredAt: m.now()})
		}
	}
	return out, nil
}

func (m *memStore) PurchaseCards(_ context.Context, userID uuid.UUID, cost int64, cardIDs []uuid.UUID, reason, _ string) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.creditLocked(userID, -cost, reason)
	if err != nil {
		return nil, err
	}
	m.owned[userID] = append(m.owned[userID], cardIDs...)
	return e, nil
}

func pickKey(userID uuid.UUID, gameID, date string) string {
	return userID.String() + "|" + gameID + "|" + date
}

func (m *memStore) UpsertTeamPicks(_ context.Context, rows []models.TeamPick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range rows {
		replaced := false
		for i, existing := range m.picks {
			if pickKey(existing.UserID, existing.GameID, existing.SlateDate) == pickKey(p.UserID, p.GameID, p.SlateDate) {
				m.picks[i] = p
				replaced = true
			}
		}
		if !replaced {
			m.picks = append(m.picks, p)
		}
	}
	return nil
}

func (m *memStore) ListTeamPicks(_ context.Context, userID uuid.UUID, slateDate string) ([]models.TeamPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TeamPick{}
	for _, p := range m.picks {
		if p.UserID == userID && p.SlateDate == slateDate {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ListPicksForDate(_ context.Context, slateDate string) ([]models.TeamPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TeamPick{}
	for _, p := range m.picks {
		if p.SlateDate == slateDate {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) WinnersForDate(_ context.Context, slateDate string) ([]models.ResultWinner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ResultWinner{}
	for _, r := range m.results {
		if r.SlateDate == slateDate {
			out = append(out, models.ResultWinner{GameID: r.GameID, SlateDate: r.SlateDate, WinnerTeamID: r.WinnerTeamID})
		}
	}
	return out, nil
}

func (m *memStore) UpsertResults(_ context.Context, results []models.GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range results {
		m.results[r.GameID+"|"+r.SlateDate] = r
	}
	return nil
}

func (m *memStore) AwardPickWin(_ context.Context, ev models.XPEvent, points int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pickKey(ev.UserID, ev.GameID, ev.SlateDate) + "|" + ev.Reason
	if _, dup := m.xp[key]; dup {
		return false, nil
	}
	m.xp[key] = ev
	if points != 0 {
		if _, err := m.creditLocked(ev.UserID, points, models.ReasonPickWin); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *memStore) WeeklyRanking(_ context.Context, weekStart string, limit int) ([]models.WeeklyXP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.weekly[weekStart]
	if rows == nil {
		return []models.WeeklyXP{}, nil
	}
	return rows[:min(limit, len(rows))], nil
}

func (m *memStore) UserWeeklyXP(_ context.Context, userID uuid.UUID, weekStart string) (models.WeeklyXP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.weekly[weekStart] {
		if row.UserID == userID {
			return row, nil
		}
	}
	return models.WeeklyXP{UserID: userID}, nil
}

// fakeSports serves canned games.
type fakeSports struct {
	games map[string][]models.Game
	boxes map[int]*models.BoxScore
	err   error
}

func (f *fakeSports) Games(ctx context.Context, date string) ([]models.Game, error) {
	return f.FetchGames(ctx, date)
}

func (f *fakeSports) FetchGames(_ context.Context, date string) ([]models.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	if g, ok := f.games[date]; ok {
		return g, nil
	}
	return []models.Game{}, nil
}

func (f *fakeSports) BoxScore(_ context.Context, id int) (*models.BoxScore, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.boxes[id]
	if !ok {
		return nil, sportsdata.ErrNotFound
	}
	return b, nil
}
