package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_FiresOncePerHour(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "s3cret", r.Header.Get(cronSecretHeader))
		hits.Add(1)
	}))
	defer srv.Close()

	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	s := New(srv.URL, "s3cret", rome, []int{8, 20}, time.Minute, srv.Client(), logger)
	ctx := context.Background()

	// 06:10 UTC is 08:10 in Rome during summer time
	at := time.Date(2024, 7, 1, 6, 10, 0, 0, time.UTC)
	fired, err := s.Tick(ctx, at)
	require.NoError(t, err)
	assert.True(t, fired)

	fired, err = s.Tick(ctx, at.Add(20*time.Minute))
	require.NoError(t, err)
	assert.False(t, fired, "same hour fires once")

	fired, err = s.Tick(ctx, at.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, fired, "10:10 Rome is not a configured hour")

	fired, err = s.Tick(ctx, at.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, fired, "next day fires again")

	assert.Equal(t, int32(2), hits.Load())
}

func TestTick_FailureReleasesSlot(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "nope", http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	s := New(srv.URL, "s3cret", time.UTC, []int{12}, time.Minute, srv.Client(), logger)
	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	fired, err := s.Tick(context.Background(), at)
	assert.True(t, fired)
	assert.Error(t, err)

	fail.Store(false)
	fired, err = s.Tick(context.Background(), at.Add(time.Minute))
	assert.True(t, fired)
	assert.NoError(t, err)
}
