package roster

import (
	"context"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rostersJSON = `{
  "season": "2024-25",
  "teams": {
    "14": [{"id": "2544", "firstName": "LeBron", "lastName": "James", "position": "F", "jersey": "23"}],
    "BOS": [{"id": "1628369", "firstName": "Jayson", "lastName": "Tatum", "position": "F", "jersey": "0"}],
    "GOLDEN-STATE-WARRIORS": [{"id": "201939", "firstName": "Stephen", "lastName": "Curry", "position": "G", "jersey": "30"}]
  }
}`

// countingFS counts how many times the underlying file is opened.
type countingFS struct {
	files fstest.MapFS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.files.Open(name)
}

func newFS() *countingFS {
	return &countingFS{files: fstest.MapFS{"rosters.json": {Data: []byte(rostersJSON)}}}
}

func TestLookupTeamKeys(t *testing.T) {
	keys := LookupTeamKeys(TeamRef{ID: " 14 ", Abbr: "lal", Name: "Los Angeles Lakers"})
	assert.Equal(t, []string{"14", "LAL", "LOS-ANGELES-LAKERS", "LOS ANGELES LAKERS"}, keys)

	keys = LookupTeamKeys(TeamRef{Abbr: "lal"})
	assert.Contains(t, keys, "LAL")

	// name equal to tri-code must not produce duplicates
	keys = LookupTeamKeys(TeamRef{Abbr: "bos", Name: "BOS"})
	assert.Equal(t, []string{"BOS"}, keys)

	assert.Empty(t, LookupTeamKeys(TeamRef{ID: "abc"}))
}

func TestLookupTeamKeys_Unique(t *testing.T) {
	refs := []TeamRef{
		{ID: "1", Abbr: "1", Name: "1"},
		{ID: "007", Abbr: "7", Name: "7"},
		{Abbr: "phx", Name: "phx"},
		{Name: "  76ers  "},
	}
	for _, ref := range refs {
		keys := LookupTeamKeys(ref)
		seen := map[string]bool{}
		for _, k := range keys {
			assert.False(t, seen[k], "duplicate key %q for %+v", k, ref)
			seen[k] = true
		}
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "golden-state-warriors", Slugify("Golden State  Warriors"))
	assert.Equal(t, "philadelphia-76ers", Slugify("Philadelphia 76ers!"))
	assert.Equal(t, "", Slugify("  "))
}

func TestStore_PlayersLookupOrder(t *testing.T) {
	s := NewStore(newFS(), "rosters.json")
	ctx := context.Background()

	players, key, err := s.Players(ctx, TeamRef{ID: "14", Abbr: "BOS"})
	require.NoError(t, err)
	assert.Equal(t, "14", key)
	assert.Equal(t, "LeBron", players[0].FirstName)

	players, key, err = s.Players(ctx, TeamRef{ID: "99", Abbr: "bos"})
	require.NoError(t, err)
	assert.Equal(t, "BOS", key)
	assert.Equal(t, "Tatum", players[0].LastName)

	players, key, err = s.Players(ctx, TeamRef{Name: "Golden State Warriors"})
	require.NoError(t, err)
	assert.Equal(t, "GOLDEN-STATE-WARRIORS", key)
	assert.Len(t, players, 1)
}

func TestStore_MissIsEmptyNotError(t *testing.T) {
	s := NewStore(newFS(), "rosters.json")
	players, key, err := s.Players(context.Background(), TeamRef{Abbr: "XYZ"})
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.NotNil(t, players)
	assert.Empty(t, players)
}

func TestStore_Memoized(t *testing.T) {
	fsys := newFS()
	s := NewStore(fsys, "rosters.json")
	ctx := context.Background()

	first, err := s.Load(ctx)
	require.NoError(t, err)
	second, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fsys.opens.Load())
}

func TestStore_ConcurrentFirstLoad(t *testing.T) {
	fsys := newFS()
	s := NewStore(fsys, "rosters.json")

	var wg sync.WaitGroup
	results := make([]*File, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := s.Load(context.Background())
			assert.NoError(t, err)
			results[i] = f
		}(i)
	}
	wg.Wait()

	for _, f := range results {
		assert.Same(t, results[0], f)
	}
	assert.LessOrEqual(t, fsys.opens.Load(), int32(len(results)))
}

func TestStore_ReadAndParseErrors(t *testing.T) {
	_, err := NewStore(fstest.MapFS{}, "rosters.json").Load(context.Background())
	assert.Error(t, err)

	bad := fstest.MapFS{"rosters.json": {Data: []byte("{not json")}}
	_, err = NewStore(bad, "rosters.json").Load(context.Background())
	assert.Error(t, err)
}
