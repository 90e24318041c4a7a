package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/assignment"
	"github.com/carelink-staffing/shift-core/backend/internal/closure"
	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeRepository struct {
	shifts  map[int64]*domain.Shift
	staff   map[int64]*domain.Staff
	clients map[int64]*domain.Client
	locked  []int64
}

func (f *fakeRepository) GetShift(_ context.Context, id int64) (*domain.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepository) CreateShift(_ context.Context, shift *domain.Shift) error {
	shift.ID = int64(len(f.shifts) + 100)
	shift.Status = domain.ShiftStatusOpen
	f.shifts[shift.ID] = shift
	return nil
}

func (f *fakeRepository) ListJourney(_ context.Context, shiftID int64) ([]*domain.JourneyEntry, error) {
	return []*domain.JourneyEntry{{ShiftID: shiftID, Seq: 1, State: domain.ShiftStatusOpen}}, nil
}

func (f *fakeRepository) GetTimesheetByShift(context.Context, int64) (*domain.Timesheet, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) LockShiftFinancials(_ context.Context, shiftID int64, actorID int64, at time.Time) error {
	f.locked = append(f.locked, shiftID)
	f.shifts[shiftID].FinancialLocked = true
	f.shifts[shiftID].FinancialLockedBy = &actorID
	return nil
}

func (f *fakeRepository) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeRepository) GetStaffByUserID(_ context.Context, userID int64) (*domain.Staff, error) {
	for _, s := range f.staff {
		if s.UserID != nil && *s.UserID == userID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) CreateStaff(_ context.Context, s *domain.Staff) error {
	s.ID = int64(len(f.staff) + 100)
	f.staff[s.ID] = s
	return nil
}

func (f *fakeRepository) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeRepository) CreateClient(_ context.Context, c *domain.Client) error {
	c.ID = int64(len(f.clients) + 100)
	f.clients[c.ID] = c
	return nil
}

type MockAssigner struct {
	AssignFunc  func(ctx context.Context, shiftID, staffID int64, opts assignment.AssignOptions, actorID int64) (*assignment.Result, error)
	ConfirmFunc func(ctx context.Context, shiftID int64, opts assignment.ConfirmOptions, actorID int64) (*assignment.Result, error)
	CancelFunc  func(ctx context.Context, shiftID int64, reason string, actorID int64) (*assignment.Result, error)
	UpdateFunc  func(ctx context.Context, shiftID int64, upd *domain.ShiftUpdate, actorID int64) (*assignment.UpdateResult, error)
}

func (m *MockAssigner) Assign(ctx context.Context, shiftID, staffID int64, opts assignment.AssignOptions, actorID int64) (*assignment.Result, error) {
	return m.AssignFunc(ctx, shiftID, staffID, opts, actorID)
}

func (m *MockAssigner) Confirm(ctx context.Context, shiftID int64, opts assignment.ConfirmOptions, actorID int64) (*assignment.Result, error) {
	return m.ConfirmFunc(ctx, shiftID, opts, actorID)
}

func (m *MockAssigner) Unassign(context.Context, int64, string, int64) (*assignment.Result, error) {
	return &assignment.Result{NoOp: true}, nil
}

func (m *MockAssigner) Cancel(ctx context.Context, shiftID int64, reason string, actorID int64) (*assignment.Result, error) {
	return m.CancelFunc(ctx, shiftID, reason, actorID)
}

func (m *MockAssigner) MarkNoShow(context.Context, int64, string, int64) (*assignment.Result, error) {
	return nil, &domain.TransitionError{From: domain.ShiftStatusOpen, Event: "no_show"}
}

func (m *MockAssigner) Dispute(context.Context, int64, string, int64) (*assignment.Result, error) {
	return nil, domain.ErrConcurrentUpdate
}

func (m *MockAssigner) RevertDispute(context.Context, int64, string, int64) (*assignment.Result, error) {
	return &assignment.Result{}, nil
}

func (m *MockAssigner) UpdateShift(ctx context.Context, shiftID int64, upd *domain.ShiftUpdate, actorID int64) (*assignment.UpdateResult, error) {
	return m.UpdateFunc(ctx, shiftID, upd, actorID)
}

type MockCompleter struct {
	CompleteFunc func(ctx context.Context, shiftID int64, in closure.CompletionInput, actorID int64) (*closure.Result, error)
}

func (m *MockCompleter) Complete(ctx context.Context, shiftID int64, in closure.CompletionInput, actorID int64) (*closure.Result, error) {
	return m.CompleteFunc(ctx, shiftID, in, actorID)
}

type MockBroadcaster struct {
	BroadcastFunc func(ctx context.Context, shiftID int64, opts notify.BroadcastOptions) (*notify.BroadcastResult, error)
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, shiftID int64, opts notify.BroadcastOptions) (*notify.BroadcastResult, error) {
	return m.BroadcastFunc(ctx, shiftID, opts)
}

type fixture struct {
	h           *Handler
	repo        *fakeRepository
	assigner    *MockAssigner
	completer   *MockCompleter
	broadcaster *MockBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := int64(42)
	staffID := int64(7)
	repo := &fakeRepository{
		shifts: map[int64]*domain.Shift{
			10: {ID: 10, AgencyID: 1, ClientID: 3, Status: domain.ShiftStatusAssigned, AssignedStaffID: &staffID},
			11: {ID: 11, AgencyID: 2, ClientID: 9, Status: domain.ShiftStatusOpen},
		},
		staff: map[int64]*domain.Staff{
			7: {ID: 7, AgencyID: 1, UserID: &userID, FirstName: "Ada", LastName: "Okafor"},
		},
		clients: map[int64]*domain.Client{
			3: {ID: 3, AgencyID: 1, Name: "Riverside Care Home"},
		},
	}

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret

	f := &fixture{
		repo:        repo,
		assigner:    &MockAssigner{},
		completer:   &MockCompleter{},
		broadcaster: &MockBroadcaster{},
	}

	h, err := NewHandler(cfg, repo, f.assigner, f.completer, f.broadcaster)
	require.NoError(t, err)
	h.RegisterRoutes()
	f.h = h

	return f
}

func token(t *testing.T, userID int64, r domain.UserRole) string {
	t.Helper()
	tok, err := NewAccessToken(testSecret, userID, r, 1, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, tok, body string) Response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRequiresToken(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/shifts/10", "", "")
	assert.False(t, resp.Success)
	assert.Equal(t, "not signed in", resp.Message)

	resp = f.do(t, http.MethodGet, "/shifts/10", "garbage", "")
	assert.Equal(t, "invalid token", resp.Message)
}

func TestTokenFromCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/shifts/10", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token(t, 1, domain.UserRoleManager)})
	rec := httptest.NewRecorder()
	f.h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestShiftOfAnotherAgencyIsHidden(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/shifts/11", token(t, 1, domain.UserRoleAgencyAdmin), "")
	assert.False(t, resp.Success)
	assert.Equal(t, "shift not found", resp.Message)
}

func TestStaffSeeOnlyTheirShifts(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/shifts/10", token(t, 42, domain.UserRoleStaff), "")
	assert.True(t, resp.Success)

	resp = f.do(t, http.MethodGet, "/shifts/10", token(t, 43, domain.UserRoleStaff), "")
	assert.False(t, resp.Success)
}

func TestStaffCannotAssign(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/shifts/10/assign", token(t, 42, domain.UserRoleStaff), `{"staffID": 7}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "permission denied", resp.Message)
}

func TestAssignShift(t *testing.T) {
	f := newFixture(t)
	f.assigner.AssignFunc = func(_ context.Context, shiftID, staffID int64, opts assignment.AssignOptions, actorID int64) (*assignment.Result, error) {
		assert.Equal(t, int64(10), shiftID)
		assert.Equal(t, int64(7), staffID)
		assert.True(t, opts.BypassConfirmation)
		assert.Equal(t, int64(1), actorID)
		return &assignment.Result{
			ShiftID:   shiftID,
			StaffName: "Ada Okafor",
			NewStatus: domain.ShiftStatusConfirmed,
			Notification: domain.NotificationOutcome{Results: []domain.ChannelResult{
				{Channel: domain.ChannelEmail, Status: domain.DeliveryQueued},
				{Channel: domain.ChannelSMS, Status: domain.DeliveryFailed, Error: "gateway down"},
			}},
		}, nil
	}

	resp := f.do(t, http.MethodPost, "/shifts/10/assign", token(t, 1, domain.UserRoleManager), `{"staffID": 7, "bypassConfirmation": true}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "shift assigned to Ada Okafor, but some notifications could not be sent", resp.Message)
}

func TestAssignConflictReturnsHolder(t *testing.T) {
	f := newFixture(t)
	f.assigner.AssignFunc = func(context.Context, int64, int64, assignment.AssignOptions, int64) (*assignment.Result, error) {
		return nil, &domain.ConflictError{ShiftID: 10, AssignedStaffID: 7, AssignedStaffName: "Ada Okafor"}
	}

	resp := f.do(t, http.MethodPost, "/shifts/10/assign", token(t, 1, domain.UserRoleAgencyAdmin), `{"staffID": 8}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "shift 10 is already assigned to Ada Okafor", resp.Message)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Ada Okafor", data["assignedStaffName"])
}

func TestAssignStaffOfAnotherAgency(t *testing.T) {
	f := newFixture(t)
	f.assigner.AssignFunc = func(context.Context, int64, int64, assignment.AssignOptions, int64) (*assignment.Result, error) {
		return nil, &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "staff_id", Message: "staff member not found"}
	}

	resp := f.do(t, http.MethodPost, "/shifts/10/assign", token(t, 1, domain.UserRoleAgencyAdmin), `{"staffID": 20}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "staff member not found", resp.Message)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "staff_id", data["field"])
}

func TestAssignValidatesBody(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/shifts/10/assign", token(t, 1, domain.UserRoleAgencyAdmin), `{}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "required")
}

func TestStaffConfirmOwnShift(t *testing.T) {
	f := newFixture(t)
	f.assigner.ConfirmFunc = func(_ context.Context, _ int64, opts assignment.ConfirmOptions, _ int64) (*assignment.Result, error) {
		require.NotNil(t, opts.StaffID)
		assert.Equal(t, int64(7), *opts.StaffID)
		return &assignment.Result{NewStatus: domain.ShiftStatusConfirmed}, nil
	}

	resp := f.do(t, http.MethodPost, "/shifts/10/confirm", token(t, 42, domain.UserRoleStaff), "")
	assert.True(t, resp.Success)
	assert.Equal(t, "shift confirmed", resp.Message)
}

func TestCancelNeedsReason(t *testing.T) {
	f := newFixture(t)
	f.assigner.CancelFunc = func(_ context.Context, _ int64, reason string, _ int64) (*assignment.Result, error) {
		assert.Equal(t, "Ward closed", reason)
		return &assignment.Result{NewStatus: domain.ShiftStatusCancelled}, nil
	}

	tok := token(t, 1, domain.UserRoleManager)
	resp := f.do(t, http.MethodPost, "/shifts/10/cancel", tok, `{}`)
	assert.False(t, resp.Success)

	resp = f.do(t, http.MethodPost, "/shifts/10/cancel", tok, `{"reason": "Ward closed"}`)
	assert.True(t, resp.Success)
}

func TestServiceErrorsAreMapped(t *testing.T) {
	f := newFixture(t)
	tok := token(t, 1, domain.UserRoleAgencyAdmin)

	resp := f.do(t, http.MethodPost, "/shifts/10/no-show", tok, `{}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "cannot no_show a shift in status open", resp.Message)

	resp = f.do(t, http.MethodPost, "/shifts/10/dispute", tok, `{"reason": "hours contested"}`)
	assert.Equal(t, "the shift was changed by someone else, please reload and try again", resp.Message)
}

func TestCompleteShiftLockedFields(t *testing.T) {
	f := newFixture(t)
	f.completer.CompleteFunc = func(context.Context, int64, closure.CompletionInput, int64) (*closure.Result, error) {
		return nil, &domain.FinancialLockViolation{ShiftID: 10, Fields: []string{"total_hours"}}
	}

	resp := f.do(t, http.MethodPost, "/shifts/10/complete", token(t, 1, domain.UserRoleAgencyAdmin), `{"actualStartTime": "08:00", "actualEndTime": "20:00"}`)
	assert.False(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, []any{"total_hours"}, data["fields"])
}

func TestManagerCannotComplete(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/shifts/10/complete", token(t, 1, domain.UserRoleManager), `{"actualStartTime": "08:00", "actualEndTime": "20:00"}`)
	assert.Equal(t, "permission denied", resp.Message)
}

func TestBroadcastShift(t *testing.T) {
	f := newFixture(t)
	f.broadcaster.BroadcastFunc = func(_ context.Context, _ int64, opts notify.BroadcastOptions) (*notify.BroadcastResult, error) {
		if !opts.ConfirmRebroadcast {
			return nil, &domain.RebroadcastConfirmationRequired{ShiftID: 10, SentAt: time.Date(2025, 3, 12, 7, 0, 0, 0, time.UTC)}
		}
		return &notify.BroadcastResult{ShiftID: 10, Eligible: 3, Sent: 3}, nil
	}
	tok := token(t, 1, domain.UserRoleManager)

	resp := f.do(t, http.MethodPost, "/shifts/10/broadcast", tok, `{}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "shift 10 was already broadcast at 2025-03-12T07:00:00Z", resp.Message)

	resp = f.do(t, http.MethodPost, "/shifts/10/broadcast", tok, `{"confirmRebroadcast": true}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "urgent shift broadcast sent", resp.Message)
}

func TestUpdateShiftRejectsBadRates(t *testing.T) {
	f := newFixture(t)
	f.repo.shifts[10].StartTime = "08:00:00"
	f.repo.shifts[10].EndTime = "20:00:00"
	f.repo.shifts[10].PayRate = 14
	f.repo.shifts[10].ChargeRate = 21

	resp := f.do(t, http.MethodPatch, "/shifts/10", token(t, 1, domain.UserRoleManager), `{"chargeRate": 10}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "charge rate cannot be lower than pay rate", resp.Message)
}

func TestCreateShiftComputesDuration(t *testing.T) {
	f := newFixture(t)

	body := `{"clientID": 3, "roleRequired": "nurse", "date": "2025-03-12", "startTime": "20:00", "endTime": "08:00", "payRate": 22, "chargeRate": 33}`
	resp := f.do(t, http.MethodPost, "/shifts", token(t, 1, domain.UserRoleManager), body)
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.Equal(t, 12.0, data["durationHours"])
	assert.Equal(t, "normal", data["urgency"])
	assert.Equal(t, "open", data["status"])
}

func TestLockFinancials(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/shifts/10/lock-financials", token(t, 1, domain.UserRoleAgencyAdmin), "")
	assert.True(t, resp.Success)
	assert.Equal(t, []int64{10}, f.repo.locked)
}

func TestMyStaffProfile(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/me", token(t, 42, domain.UserRoleStaff), "")
	assert.True(t, resp.Success)
	assert.Equal(t, "Ada", resp.Data.(map[string]any)["firstName"])
}
