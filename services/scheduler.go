package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pocketpilot/pocketpilot-api/utils"
)

// syncRunTimeout bounds one scheduled run across all users.
const syncRunTimeout = 30 * time.Minute

type SyncScheduler struct {
	cron    *cron.Cron
	banking *BankingService
}

// NewSyncScheduler registers a sync of every user on the given cron spec.
// Overlapping runs are skipped.
func NewSyncScheduler(spec string, banking *BankingService) (*SyncScheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &SyncScheduler{cron: c, banking: banking}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *SyncScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.banking.SyncAll(ctx)
	if err != nil {
		utils.SafeError("Scheduled sync aborted: %v", err)
		return
	}
	utils.SafeInfo("⏰ Scheduled sync done in %s: %d items, %d fetched, %d new",
		time.Since(start).Round(time.Millisecond), result.Items, result.Fetched, result.Inserted)
}

func (s *SyncScheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sync to finish or ctx to expire.
func (s *SyncScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
