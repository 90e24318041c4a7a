package closure

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

// Automator starts confirmed shifts once their start time passes and hands
// finished ones to admin closure.
type Automator struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewAutomator(st store.Store, loc *time.Location) *Automator {
	return &Automator{store: st, loc: loc, now: time.Now}
}

type AdvanceResult struct {
	Started  int `json:"started"`
	Finished int `json:"finished"`
	Failed   int `json:"failed"`
}

// Run calls Advance every interval until ctx is done.
func (a *Automator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := a.Advance(ctx, a.now())
			if err != nil {
				slog.Error("status automation failed", "error", err)
				continue
			}
			if res.Started+res.Finished+res.Failed > 0 {
				slog.Info("status automation", "started", res.Started, "finished", res.Finished, "failed", res.Failed)
			}
		}
	}
}

// Advance moves every due shift forward as of now. Each shift is handled in
// its own transaction; one failing does not stop the rest.
func (a *Automator) Advance(ctx context.Context, now time.Time) (AdvanceResult, error) {
	var res AdvanceResult

	due, err := a.store.ListShiftsByStatus(ctx,
		[]domain.ShiftStatus{domain.ShiftStatusConfirmed, domain.ShiftStatusInProgress},
		now.In(a.loc),
	)
	if err != nil {
		return res, err
	}

	for _, candidate := range due {
		if len(a.dueEvents(candidate, now)) == 0 {
			continue
		}

		fired, err := a.advanceShift(ctx, candidate.ID, now)
		switch {
		case errors.Is(err, domain.ErrConcurrentUpdate):
			continue
		case err != nil:
			res.Failed++
			slog.Warn("failed to advance shift", "shift_id", candidate.ID, "error", err)
			continue
		}

		for _, event := range fired {
			switch event {
			case lifecycle.EventStart:
				res.Started++
			case lifecycle.EventFinish:
				res.Finished++
			}
		}
	}

	return res, nil
}

// dueEvents lists the events the clock has made due for shift, in order.
func (a *Automator) dueEvents(shift *domain.Shift, now time.Time) []lifecycle.Event {
	start, end, err := shift.Window(a.loc)
	if err != nil {
		return nil
	}

	events := []lifecycle.Event{}
	status := shift.Status
	if status == domain.ShiftStatusConfirmed && !now.Before(start) {
		events = append(events, lifecycle.EventStart)
		status = domain.ShiftStatusInProgress
	}
	if status == domain.ShiftStatusInProgress && !now.Before(end) {
		events = append(events, lifecycle.EventFinish)
	}
	return events
}

func (a *Automator) advanceShift(ctx context.Context, shiftID int64, now time.Time) ([]lifecycle.Event, error) {
	var fired []lifecycle.Event

	err := a.store.InTx(ctx, func(tx store.Tx) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		start, end, err := shift.Window(a.loc)
		if err != nil {
			return err
		}

		for _, event := range a.dueEvents(shift, now) {
			next, err := lifecycle.Fire(ctx, shift, event, lifecycle.Input{})
			metrics.ObserveAutomation(string(event), err)
			if err != nil {
				return err
			}

			shift.Status = next
			notes := "Started automatically at scheduled start time"
			if event == lifecycle.EventStart {
				shift.ShiftStartedAt = &start
			} else {
				shift.ShiftEndedAt = &end
				notes = "Ended automatically at scheduled end time; awaiting admin closure"
			}

			if err := tx.AppendJourney(ctx, &domain.JourneyEntry{
				ShiftID: shift.ID,
				State:   next,
				StaffID: shift.AssignedStaffID,
				Method:  domain.MethodAutomated,
				Notes:   notes,
			}); err != nil {
				return err
			}
			fired = append(fired, event)
		}

		if len(fired) == 0 {
			return nil
		}
		return tx.UpdateShift(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	return fired, nil
}
