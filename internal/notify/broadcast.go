package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var ErrBroadcastInProgress = errors.New("a broadcast for this shift is already in progress")

type BroadcastStore interface {
	GetShift(ctx context.Context, id int64) (*domain.Shift, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	ListEligibleStaff(ctx context.Context, agencyID int64, role domain.StaffRole) ([]*domain.Staff, error)
	MarkBroadcastSent(ctx context.Context, shiftID int64, at time.Time) error
}

type UrgentNotifier interface {
	NotifyUrgent(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome
}

type BroadcastOptions struct {
	ConfirmRebroadcast bool
	ActorID            int64
}

type BroadcastResult struct {
	ShiftID  int64     `json:"shiftID"`
	Eligible int       `json:"eligible"`
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	SentAt   time.Time `json:"sentAt"`
}

func (r *BroadcastResult) Partial() bool {
	return r.Failed > 0
}

type Broadcaster struct {
	store       BroadcastStore
	notifier    UrgentNotifier
	rdb         redis.Cmdable
	lockTTL     time.Duration
	concurrency int
	now         func() time.Time
}

func NewBroadcaster(st BroadcastStore, notifier UrgentNotifier, rdb redis.Cmdable, lockTTL time.Duration, concurrency int) *Broadcaster {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Broadcaster{
		store:       st,
		notifier:    notifier,
		rdb:         rdb,
		lockTTL:     lockTTL,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func lockKey(shiftID int64) string {
	return fmt.Sprintf("shift:broadcast:%d", shiftID)
}

// Broadcast sends an urgent cover request for an open shift to every eligible
// staff member. A shift broadcast before needs ConfirmRebroadcast.
func (b *Broadcaster) Broadcast(ctx context.Context, shiftID int64, opts BroadcastOptions) (*BroadcastResult, error) {
	shift, err := b.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != domain.ShiftStatusOpen {
		return nil, &domain.TransitionError{From: shift.Status, Event: "broadcast"}
	}
	if shift.BroadcastSentAt != nil && !opts.ConfirmRebroadcast {
		return nil, &domain.RebroadcastConfirmationRequired{ShiftID: shift.ID, SentAt: *shift.BroadcastSentAt}
	}

	key := lockKey(shift.ID)
	acquired, err := b.rdb.SetNX(ctx, key, strconv.FormatInt(opts.ActorID, 10), b.lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrBroadcastInProgress
	}
	defer func() {
		if err := b.rdb.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			slog.Warn("failed to release broadcast lock", "shift_id", shift.ID, "error", err)
		}
	}()

	client, err := b.store.GetClient(ctx, shift.ClientID)
	if err != nil {
		return nil, err
	}
	candidates, err := b.store.ListEligibleStaff(ctx, shift.AgencyID, shift.RoleRequired)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{ShiftID: shift.ID, Eligible: len(candidates)}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(b.concurrency)
	for _, staff := range candidates {
		g.Go(func() error {
			outcome := b.notifier.NotifyUrgent(ctx, staff, shift, client)

			mu.Lock()
			defer mu.Unlock()
			if outcome.Delivered() {
				result.Sent++
			} else {
				result.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	result.SentAt = b.now()
	if err := b.store.MarkBroadcastSent(ctx, shift.ID, result.SentAt); err != nil {
		return nil, err
	}

	metrics.ObserveBroadcast(result.Sent, result.Failed)
	slog.Info("broadcast sent", "shift_id", shift.ID, "eligible", result.Eligible, "sent", result.Sent, "failed", result.Failed)

	return result, nil
}
