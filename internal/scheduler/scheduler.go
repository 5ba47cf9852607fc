// Package scheduler fires the results sync at fixed local hours. It only proxies:
// every tick that lands in a configured hour POSTs once to the target URL.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const cronSecretHeader = "X-Cron-Secret"

type Scheduler struct {
	target   string
	secret   string
	loc      *time.Location
	hours    map[int]struct{}
	interval time.Duration
	client   *http.Client
	logger   *logrus.Logger

	mu    sync.Mutex
	fired map[string]struct{}
}

// New builds a scheduler for hours (0-23) in loc.
func New(target, secret string, loc *time.Location, hours []int, interval time.Duration, client *http.Client, logger *logrus.Logger) *Scheduler {
	set := make(map[int]struct{}, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scheduler{
		target:   target,
		secret:   secret,
		loc:      loc,
		hours:    set,
		interval: interval,
		client:   client,
		logger:   logger,
		fired:    map[string]struct{}{},
	}
}

// due reports whether now falls in a configured hour that has not fired yet, and claims it.
func (s *Scheduler) due(now time.Time) (string, bool) {
	local := now.In(s.loc)
	if _, ok := s.hours[local.Hour()]; !ok {
		return "", false
	}
	slot := local.Format("2006-01-02T15")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.fired[slot]; done {
		return "", false
	}
	s.fired[slot] = struct{}{}
	// drop slots older than two days
	cutoff := local.Add(-48 * time.Hour).Format("2006-01-02T15")
	for k := range s.fired {
		if k < cutoff {
			delete(s.fired, k)
		}
	}
	return slot, true
}

// Tick fires the target if now is due. It returns whether a request was sent.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (bool, error) {
	slot, ok := s.due(now)
	if !ok {
		return false, nil
	}
	if err := s.fire(ctx); err != nil {
		// release the slot so the next tick in the same hour retries
		s.mu.Lock()
		delete(s.fired, slot)
		s.mu.Unlock()
		return true, err
	}
	s.logger.WithField("slot", slot).Info("scheduler fired")
	return true, nil
}

func (s *Scheduler) fire(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(cronSecretHeader, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", s.target, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("POST %s: status %d: %s", s.target, resp.StatusCode, body)
	}
	return nil
}

// Run ticks every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{"target": s.target, "tz": s.loc.String()}).Info("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case now := <-ticker.C:
			if _, err := s.Tick(ctx, now); err != nil {
				s.logger.WithError(err).Error("scheduler fire failed")
			}
		}
	}
}
