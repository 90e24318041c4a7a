package assignment

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

// memStore is an in-memory store.Store. InTx snapshots the data and restores
// it when fn fails, which is enough to observe rollbacks in tests.
type memStore struct {
	shifts     map[int64]*domain.Shift
	staff      map[int64]*domain.Staff
	clients    map[int64]*domain.Client
	bookings   []*domain.Booking
	journey    []*domain.JourneyEntry
	timesheets map[int64]*domain.Timesheet
	nextID     int64

	updateShiftErr error
	locked         []int64
}

func newMemStore() *memStore {
	return &memStore{
		shifts:     map[int64]*domain.Shift{},
		staff:      map[int64]*domain.Staff{},
		clients:    map[int64]*domain.Client{},
		timesheets: map[int64]*domain.Timesheet{},
		nextID:     100,
	}
}

var _ store.Store = (*memStore)(nil)
var _ store.Tx = (*memStore)(nil)

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type snapshot struct {
	shifts     map[int64]domain.Shift
	bookings   []domain.Booking
	journey    int
	timesheets map[int64]domain.Timesheet
}

func (m *memStore) snapshot() snapshot {
	snap := snapshot{shifts: map[int64]domain.Shift{}, timesheets: map[int64]domain.Timesheet{}, journey: len(m.journey)}
	for id, s := range m.shifts {
		snap.shifts[id] = *s
	}
	for _, b := range m.bookings {
		snap.bookings = append(snap.bookings, *b)
	}
	for id, ts := range m.timesheets {
		snap.timesheets[id] = *ts
	}
	return snap
}

func (m *memStore) restore(snap snapshot) {
	for id, s := range snap.shifts {
		m.shifts[id] = &s
	}
	m.bookings = nil
	for _, b := range snap.bookings {
		m.bookings = append(m.bookings, &b)
	}
	m.journey = m.journey[:snap.journey]
	for id, ts := range snap.timesheets {
		m.timesheets[id] = &ts
	}
}

func (m *memStore) InTx(_ context.Context, fn func(tx store.Tx) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) GetShift(_ context.Context, id int64) (*domain.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error) {
	return m.GetShift(ctx, id)
}

func (m *memStore) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *memStore) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *memStore) ListJourney(_ context.Context, shiftID int64) ([]*domain.JourneyEntry, error) {
	out := []*domain.JourneyEntry{}
	for _, e := range m.journey {
		if e.ShiftID == shiftID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) GetActiveBookingByShift(_ context.Context, shiftID int64) (*domain.Booking, error) {
	for _, b := range m.bookings {
		if b.ShiftID == shiftID && b.Status != domain.BookingStatusCancelled {
			cp := *b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) GetTimesheetByShift(_ context.Context, shiftID int64) (*domain.Timesheet, error) {
	ts, ok := m.timesheets[shiftID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *ts
	return &cp, nil
}

func (m *memStore) GetTimesheetByShiftForUpdate(ctx context.Context, shiftID int64) (*domain.Timesheet, error) {
	return m.GetTimesheetByShift(ctx, shiftID)
}

func (m *memStore) LockStaffSchedule(_ context.Context, staffID int64) error {
	m.locked = append(m.locked, staffID)
	return nil
}

func (m *memStore) ListStaffShifts(_ context.Context, staffID int64, from, to time.Time, statuses []domain.ShiftStatus) ([]*domain.Shift, error) {
	out := []*domain.Shift{}
	for _, s := range m.shifts {
		if !s.IsAssignedTo(staffID) || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				cp := *s
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) UpdateShift(_ context.Context, shift *domain.Shift) error {
	if m.updateShiftErr != nil {
		return m.updateShiftErr
	}
	cur, ok := m.shifts[shift.ID]
	if !ok || cur.Version != shift.Version {
		return domain.ErrConcurrentUpdate
	}
	shift.Version++
	cp := *shift
	m.shifts[shift.ID] = &cp
	return nil
}

func (m *memStore) AppendJourney(_ context.Context, entry *domain.JourneyEntry) error {
	var seq int32
	for _, e := range m.journey {
		if e.ShiftID == entry.ShiftID && e.Seq > seq {
			seq = e.Seq
		}
	}
	entry.Seq = seq + 1
	entry.RecordedAt = time.Now()
	cp := *entry
	m.journey = append(m.journey, &cp)
	return nil
}

func (m *memStore) CreateBooking(_ context.Context, b *domain.Booking) error {
	b.ID = m.id()
	cp := *b
	m.bookings = append(m.bookings, &cp)
	return nil
}

func (m *memStore) UpdateBooking(_ context.Context, b *domain.Booking) error {
	for i, cur := range m.bookings {
		if cur.ID == b.ID {
			if cur.Version != b.Version {
				return domain.ErrConcurrentUpdate
			}
			b.Version++
			cp := *b
			m.bookings[i] = &cp
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memStore) UpdateTimesheet(_ context.Context, ts *domain.Timesheet) error {
	cur, ok := m.timesheets[ts.ShiftID]
	if !ok || cur.Version != ts.Version {
		return domain.ErrConcurrentUpdate
	}
	ts.Version++
	cp := *ts
	m.timesheets[ts.ShiftID] = &cp
	return nil
}

func (m *memStore) ListEligibleStaff(context.Context, int64, domain.StaffRole) ([]*domain.Staff, error) {
	return nil, nil
}

func (m *memStore) MarkBroadcastSent(context.Context, int64, time.Time) error { return nil }

func (m *memStore) ListShiftsByStatus(context.Context, []domain.ShiftStatus, time.Time) ([]*domain.Shift, error) {
	return nil, nil
}

func (m *memStore) bookingsFor(shiftID int64) []*domain.Booking {
	out := []*domain.Booking{}
	for _, b := range m.bookings {
		if b.ShiftID == shiftID {
			out = append(out, b)
		}
	}
	return out
}

type MockTimesheets struct {
	CreateDraftTimesheetFunc func(ctx context.Context, booking *domain.Booking, shift *domain.Shift) (int64, error)
}

func (m *MockTimesheets) CreateDraftTimesheet(ctx context.Context, booking *domain.Booking, shift *domain.Shift) (int64, error) {
	return m.CreateDraftTimesheetFunc(ctx, booking, shift)
}

type notification struct {
	kind    domain.NotificationKind
	staffID int64
	reason  string
}

// recordingNotifier records every call. When block is set each call waits on
// it before returning.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
	block chan struct{}
}

func (n *recordingNotifier) record(kind domain.NotificationKind, staffID int64, reason string) domain.NotificationOutcome {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{kind: kind, staffID: staffID, reason: reason})
	return domain.NotificationOutcome{Results: []domain.ChannelResult{{Channel: domain.ChannelSMS, Status: domain.DeliverySent}}}
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []domain.NotificationKind{}
	for _, c := range n.calls {
		out = append(out, c.kind)
	}
	return out
}

func (n *recordingNotifier) NotifyAssignment(_ context.Context, staff *domain.Staff, _ *domain.Shift, _ *domain.Client) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftAssignment, staff.ID, "")
}

func (n *recordingNotifier) NotifyStaffConfirmed(_ context.Context, staff *domain.Staff, _ *domain.Shift, _ *domain.Client) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftConfirmedStaff, staff.ID, "")
}

func (n *recordingNotifier) NotifyClientConfirmed(_ context.Context, _ *domain.Client, staff *domain.Staff, _ *domain.Shift) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftConfirmedClient, staff.ID, "")
}

func (n *recordingNotifier) NotifyReassigned(_ context.Context, staff *domain.Staff, _ *domain.Shift, _ *domain.Client) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftReassigned, staff.ID, "")
}

func (n *recordingNotifier) NotifyUnassigned(_ context.Context, staff *domain.Staff, _ *domain.Shift, _ *domain.Client, reason string) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftUnassigned, staff.ID, reason)
}

func (n *recordingNotifier) NotifyCancelled(_ context.Context, staff *domain.Staff, _ *domain.Shift, _ *domain.Client, reason string) domain.NotificationOutcome {
	return n.record(domain.NotificationShiftCancelled, staff.ID, reason)
}
