package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCache_DisabledIsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*JSONCache{
		"nil cache":  nil,
		"nil client": NewJSONCache(nil, time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())
			require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))

			var out map[string]int
			hit, err := c.Get(ctx, "k", &out)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestRemember_LoadsEveryTimeWhenDisabled(t *testing.T) {
	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	for i := 0; i < 2; i++ {
		v, err := Remember(context.Background(), nil, "games:2024-05-15", load)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, v)
	}
	assert.Equal(t, 2, calls)
}

func TestRemember_PropagatesLoadError(t *testing.T) {
	boom := errors.New("upstream 502")
	_, err := Remember(context.Background(), NewJSONCache(nil, time.Minute), "k", func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}
