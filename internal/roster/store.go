package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jason-s-yu/anima/internal/models"
	"golang.org/x/sync/singleflight"
)

// File is the decoded rosters.json.
type File struct {
	Season string                           `json:"season"`
	Teams  map[string][]models.RosterPlayer `json:"teams"`
}

// Store loads the roster file once and keeps it for the life of the process.
type Store struct {
	fsys fs.FS
	path string

	group singleflight.Group

	mu     sync.RWMutex
	loaded *File
}

func NewStore(fsys fs.FS, path string) *Store {
	return &Store{fsys: fsys, path: path}
}

// Load returns the cached file, reading it on first use. Concurrent first callers share one read.
func (s *Store) Load(ctx context.Context) (*File, error) {
	s.mu.RLock()
	f := s.loaded
	s.mu.RUnlock()
	if f != nil {
		return f, nil
	}

	v, err, _ := s.group.Do(s.path, func() (interface{}, error) {
		s.mu.RLock()
		cached := s.loaded
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		raw, err := fs.ReadFile(s.fsys, s.path)
		if err != nil {
			return nil, fmt.Errorf("read rosters file %s: %w", s.path, err)
		}
		var parsed File
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("parse rosters file %s: %w", s.path, err)
		}
		if parsed.Teams == nil {
			parsed.Teams = map[string][]models.RosterPlayer{}
		}

		s.mu.Lock()
		s.loaded = &parsed
		s.mu.Unlock()
		return &parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*File), nil
}

// Players returns the first non-empty roster matching ref's keys. A miss is an empty slice, not an error.
func (s *Store) Players(ctx context.Context, ref TeamRef) ([]models.RosterPlayer, string, error) {
	f, err := s.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, k := range LookupTeamKeys(ref) {
		if players := f.Teams[k]; len(players) > 0 {
			return players, k, nil
		}
	}
	return []models.RosterPlayer{}, "", nil
}
