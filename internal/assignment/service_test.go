package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/availability"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store    *memStore
	notifier *recordingNotifier
	sheets   *MockTimesheets
	svc      *Service
}

func newFixture() *fixture {
	st := newMemStore()
	st.clients[3] = &domain.Client{ID: 3, AgencyID: 1, Name: "Meadow View Care Home"}
	st.staff[1] = &domain.Staff{ID: 1, AgencyID: 1, FirstName: "Ada", LastName: "Okafor", Role: domain.StaffRoleHealthcareAssistant, Status: domain.StaffStatusActive}
	st.staff[2] = &domain.Staff{ID: 2, AgencyID: 1, FirstName: "Ben", LastName: "Hale", Role: domain.StaffRoleHealthcareAssistant, Status: domain.StaffStatusActive}
	st.staff[3] = &domain.Staff{ID: 3, AgencyID: 1, FirstName: "Cara", LastName: "Singh", Role: domain.StaffRoleNurse, Status: domain.StaffStatusActive}
	st.staff[4] = &domain.Staff{ID: 4, AgencyID: 1, FirstName: "Dan", LastName: "Price", Role: domain.StaffRoleHealthcareAssistant, Status: domain.StaffStatusSuspended}
	st.shifts[10] = &domain.Shift{
		ID:            10,
		AgencyID:      1,
		ClientID:      3,
		RoleRequired:  domain.StaffRoleHealthcareAssistant,
		Date:          time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime:     "08:00:00",
		EndTime:       "20:00:00",
		DurationHours: 12,
		PayRate:       13.75,
		ChargeRate:    19.5,
		Status:        domain.ShiftStatusOpen,
		Urgency:       domain.UrgencyNormal,
		Version:       1,
	}

	f := &fixture{
		store:    st,
		notifier: &recordingNotifier{},
		sheets: &MockTimesheets{
			CreateDraftTimesheetFunc: func(_ context.Context, b *domain.Booking, s *domain.Shift) (int64, error) {
				st.timesheets[s.ID] = &domain.Timesheet{ID: 500, ShiftID: s.ID, StaffID: b.StaffID, BookingID: &b.ID, Status: domain.TimesheetStatusDraft}
				return 500, nil
			},
		},
	}
	f.svc = NewService(st, availability.NewValidator(16, 24), f.sheets, f.notifier, 2*time.Second)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// addShift places another shift held by staffID on the roster.
func (f *fixture) addShift(id, staffID int64, day int, start, end string, hours float64, status domain.ShiftStatus) {
	f.store.shifts[id] = &domain.Shift{
		ID:              id,
		AgencyID:        1,
		ClientID:        3,
		RoleRequired:    domain.StaffRoleHealthcareAssistant,
		Date:            time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		EndTime:         end,
		DurationHours:   hours,
		Status:          status,
		AssignedStaffID: ptr(staffID),
		Version:         1,
	}
}

func TestAssignCreatesPendingBooking(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusAssigned, res.NewStatus)
	assert.Equal(t, "Ada Okafor", res.StaffName)
	assert.False(t, res.NoOp)
	assert.True(t, res.TimesheetCreated)
	assert.Equal(t, int64(500), *res.TimesheetID)
	assert.True(t, res.Notification.Delivered())

	shift := f.store.shifts[10]
	assert.Equal(t, domain.ShiftStatusAssigned, shift.Status)
	assert.True(t, shift.IsAssignedTo(1))
	assert.Nil(t, shift.StaffConfirmedAt)

	require.Len(t, f.store.journey, 1)
	entry := f.store.journey[0]
	assert.Equal(t, domain.ShiftStatusAssigned, entry.State)
	assert.Equal(t, domain.MethodAdminAssigned, entry.Method)
	assert.Equal(t, int64(99), *entry.ActorID)
	assert.Equal(t, int64(1), *entry.StaffID)

	bookings := f.store.bookingsFor(10)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingStatusPending, bookings[0].Status)
	assert.Equal(t, domain.ConfirmationApp, bookings[0].ConfirmationMethod)
	assert.Nil(t, bookings[0].ConfirmedByStaffAt)

	assert.Equal(t, []int64{1}, f.store.locked)
	assert.Equal(t, []domain.NotificationKind{domain.NotificationShiftAssignment}, f.notifier.kinds())
}

func TestAssignWithBypassConfirms(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusConfirmed, res.NewStatus)
	assert.Equal(t, fixedNow, *f.store.shifts[10].StaffConfirmedAt)
	assert.Equal(t, domain.MethodAdminConfirmed, f.store.journey[0].Method)

	b := f.store.bookingsFor(10)[0]
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, domain.ConfirmationAdminBypass, b.ConfirmationMethod)
	assert.Equal(t, fixedNow, *b.ConfirmedByStaffAt)

	assert.ElementsMatch(t, []domain.NotificationKind{
		domain.NotificationShiftAssignment,
		domain.NotificationShiftConfirmedClient,
	}, f.notifier.kinds())
}

func TestAssignSameStaffSameStateIsNoOp(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	assert.True(t, res.NoOp)
	assert.Equal(t, domain.ShiftStatusAssigned, res.NewStatus)
	assert.Len(t, f.store.journey, 1)
	assert.Len(t, f.store.bookingsFor(10), 1)
	assert.Len(t, f.notifier.kinds(), 1)
}

func TestAssignThenBypassUpgradesExistingBooking(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusConfirmed, res.NewStatus)
	bookings := f.store.bookingsFor(10)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingStatusConfirmed, bookings[0].Status)
}

func TestAssignRejectsShiftHeldByOtherStaff(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	_, err = f.svc.Assign(context.Background(), 10, 2, AssignOptions{}, 99)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.AssignedStaffID)
	assert.Equal(t, "Ada Okafor", conflict.AssignedStaffName)
	assert.Len(t, f.store.journey, 1)
}

func TestAssignRejectsOverlap(t *testing.T) {
	f := newFixture()
	f.addShift(20, 1, 12, "18:00:00", "22:00:00", 4, domain.ShiftStatusConfirmed)

	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonOverlap, verr.Reason)
	require.Len(t, verr.Conflicts, 1)
	assert.Equal(t, int64(20), verr.Conflicts[0].ShiftID)

	assert.Equal(t, domain.ShiftStatusOpen, f.store.shifts[10].Status)
	assert.Nil(t, f.store.shifts[10].AssignedStaffID)
	assert.Empty(t, f.store.journey)
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.notifier.kinds())
}

func TestAssignRejectsOverTwentyFourHourCap(t *testing.T) {
	f := newFixture()
	f.addShift(20, 1, 11, "00:00:00", "06:00:00", 6, domain.ShiftStatusAssigned)

	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.Reason24hLimit, verr.Reason)
	assert.Equal(t, 18.0, verr.TotalHours)
}

func TestAssignRunsStaffGuards(t *testing.T) {
	tests := []struct {
		name    string
		staffID int64
		reason  domain.ValidationReason
	}{
		{"role mismatch", 3, domain.ReasonRoleMismatch},
		{"inactive staff", 4, domain.ReasonStaffInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Assign(context.Background(), 10, tt.staffID, AssignOptions{}, 99)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestAssignRejectsStaffOfAnotherAgency(t *testing.T) {
	f := newFixture()
	f.store.staff[20] = &domain.Staff{ID: 20, AgencyID: 2, FirstName: "Eve", LastName: "Moss", Role: domain.StaffRoleHealthcareAssistant, Status: domain.StaffStatusActive}

	_, err := f.svc.Assign(context.Background(), 10, 20, AssignOptions{}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "staff_id", verr.Field)
	assert.Equal(t, domain.ShiftStatusOpen, f.store.shifts[10].Status)
	assert.Nil(t, f.store.shifts[10].AssignedStaffID)
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.notifier.kinds())
}

func TestAssignSurvivesTimesheetFailure(t *testing.T) {
	f := newFixture()
	f.sheets.CreateDraftTimesheetFunc = func(context.Context, *domain.Booking, *domain.Shift) (int64, error) {
		return 0, errors.New("timesheet service unavailable")
	}

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	assert.False(t, res.TimesheetCreated)
	assert.Nil(t, res.TimesheetID)
	assert.Equal(t, domain.ShiftStatusAssigned, f.store.shifts[10].Status)
}

func TestAssignReportsPendingNotification(t *testing.T) {
	f := newFixture()
	f.notifier.block = make(chan struct{})
	f.svc.notifyWait = 10 * time.Millisecond

	res, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)
	close(f.notifier.block)

	assert.True(t, res.Notification.Pending)
	assert.Equal(t, domain.ShiftStatusAssigned, f.store.shifts[10].Status)
}

func TestAssignLosesVersionRace(t *testing.T) {
	f := newFixture()
	f.store.updateShiftErr = domain.ErrConcurrentUpdate

	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Empty(t, f.store.bookings)
}

func TestConfirmByStaff(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	res, err := f.svc.Confirm(context.Background(), 10, ConfirmOptions{StaffID: ptr(int64(1))}, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusConfirmed, res.NewStatus)
	require.Len(t, f.store.journey, 2)
	assert.Equal(t, domain.MethodStaffConfirmed, f.store.journey[1].Method)
	assert.Equal(t, int32(2), f.store.journey[1].Seq)

	bookings := f.store.bookingsFor(10)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingStatusConfirmed, bookings[0].Status)
	assert.Equal(t, domain.ConfirmationApp, bookings[0].ConfirmationMethod)

	assert.Contains(t, f.notifier.kinds(), domain.NotificationShiftConfirmedStaff)
	assert.Contains(t, f.notifier.kinds(), domain.NotificationShiftConfirmedClient)
}

func TestConfirmByWrongStaff(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), 10, ConfirmOptions{StaffID: ptr(int64(2))}, 2)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.ShiftStatusAssigned, f.store.shifts[10].Status)
}

func TestConfirmOpenShiftIsInvalid(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Confirm(context.Background(), 10, ConfirmOptions{}, 99)

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.ShiftStatusOpen, terr.From)
}

func TestUnassign(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	res, err := f.svc.Unassign(context.Background(), 10, "staff unwell", 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusOpen, res.NewStatus)
	assert.Nil(t, f.store.shifts[10].AssignedStaffID)

	last := f.store.journey[len(f.store.journey)-1]
	assert.Equal(t, domain.MethodAdminUnassigned, last.Method)
	assert.Equal(t, int64(1), *last.StaffID)
	assert.Equal(t, "staff unwell", last.Notes)

	assert.Equal(t, domain.BookingStatusCancelled, f.store.bookingsFor(10)[0].Status)

	calls := f.notifier.calls
	require.Len(t, calls, 2)
	assert.Equal(t, notification{kind: domain.NotificationShiftUnassigned, staffID: 1, reason: "staff unwell"}, calls[1])
}

func TestUpdateShiftRejectsLockedFields(t *testing.T) {
	f := newFixture()
	f.store.shifts[10].FinancialLocked = true

	_, err := f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{PayRate: ptr(13.75), Notes: ptr("bring badge")}, 99)

	var lock *domain.FinancialLockViolation
	require.ErrorAs(t, err, &lock)
	assert.Equal(t, []string{"pay_rate"}, lock.Fields)
	assert.Equal(t, "", f.store.shifts[10].Notes)
}

func TestUpdateShiftRecomputesDuration(t *testing.T) {
	f := newFixture()

	res, err := f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{StartTime: ptr("20:00"), EndTime: ptr("08:00")}, 99)
	require.NoError(t, err)

	assert.False(t, res.Reassigned)
	assert.Equal(t, 12.0, res.Shift.DurationHours)
	assert.Equal(t, "20:00", f.store.shifts[10].StartTime)
	assert.Empty(t, f.store.journey)
}

func TestUpdateShiftRevalidatesAssigneeOnTimeChange(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)
	f.addShift(20, 1, 12, "21:00:00", "23:00:00", 2, domain.ShiftStatusConfirmed)

	_, err = f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{EndTime: ptr("22:00:00")}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonOverlap, verr.Reason)
	assert.Equal(t, "20:00:00", f.store.shifts[10].EndTime)
}

func TestUpdateShiftReassigns(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)

	res, err := f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{AssignedStaffID: ptr(int64(2))}, 99)
	require.NoError(t, err)

	assert.True(t, res.Reassigned)
	assert.Equal(t, int64(1), *res.PreviousStaffID)
	assert.True(t, res.Shift.IsAssignedTo(2))
	assert.Equal(t, domain.ShiftStatusConfirmed, res.Shift.Status)

	last := f.store.journey[len(f.store.journey)-1]
	assert.Equal(t, domain.MethodAdminReassigned, last.Method)
	assert.Equal(t, "Reassigned from Ada Okafor to Ben Hale", last.Notes)

	bookings := f.store.bookingsFor(10)
	require.Len(t, bookings, 2)
	assert.Equal(t, domain.BookingStatusCancelled, bookings[0].Status)
	assert.Equal(t, int64(2), bookings[1].StaffID)
	assert.Equal(t, domain.BookingStatusConfirmed, bookings[1].Status)

	ts := f.store.timesheets[10]
	assert.Equal(t, int64(2), ts.StaffID)
	assert.Equal(t, bookings[1].ID, *ts.BookingID)

	var reassigned, assigned bool
	for _, c := range f.notifier.calls {
		if c.kind == domain.NotificationShiftReassigned && c.staffID == 1 {
			reassigned = true
		}
		if c.kind == domain.NotificationShiftAssignment && c.staffID == 2 {
			assigned = true
		}
	}
	assert.True(t, reassigned, "previous staff must be told")
	assert.True(t, assigned, "new staff must be told")
}

func TestUpdateShiftReassignmentValidatesNewStaff(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)
	f.addShift(20, 2, 12, "07:00:00", "09:00:00", 2, domain.ShiftStatusAssigned)

	_, err = f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{AssignedStaffID: ptr(int64(2))}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonOverlap, verr.Reason)
	assert.True(t, f.store.shifts[10].IsAssignedTo(1))
	assert.Len(t, f.store.bookingsFor(10), 1)
}

func TestUpdateShiftReassignmentRejectsStaffOfAnotherAgency(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)
	f.store.staff[20] = &domain.Staff{ID: 20, AgencyID: 2, FirstName: "Eve", LastName: "Moss", Role: domain.StaffRoleHealthcareAssistant, Status: domain.StaffStatusActive}

	_, err = f.svc.UpdateShift(context.Background(), 10, &domain.ShiftUpdate{AssignedStaffID: ptr(int64(20))}, 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "staff_id", verr.Field)
	assert.True(t, f.store.shifts[10].IsAssignedTo(1))
}

func TestCancelNotifiesAssignee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)

	res, err := f.svc.Cancel(context.Background(), 10, "ward closed", 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusCancelled, res.NewStatus)
	assert.Equal(t, domain.BookingStatusCancelled, f.store.bookingsFor(10)[0].Status)
	assert.Contains(t, f.notifier.kinds(), domain.NotificationShiftCancelled)

	_, err = f.svc.Dispute(context.Background(), 10, "late", 99)
	var terr *domain.TransitionError
	assert.ErrorAs(t, err, &terr, "terminal shifts cannot be disputed")
}

func TestDisputeAndRevert(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{}, 99)
	require.NoError(t, err)

	_, err = f.svc.Dispute(context.Background(), 10, "", 99)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reason", verr.Field)

	res, err := f.svc.Dispute(context.Background(), 10, "client disputes attendance", 99)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusDisputed, res.NewStatus)

	res, err = f.svc.RevertDispute(context.Background(), 10, "resolved", 99)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftStatusAssigned, res.NewStatus)

	methods := []domain.JourneyMethod{}
	for _, e := range f.store.journey {
		methods = append(methods, e.Method)
	}
	assert.Equal(t, []domain.JourneyMethod{
		domain.MethodAdminAssigned,
		domain.MethodAdminDisputed,
		domain.MethodAdminDisputeReverted,
	}, methods)
}

func TestRevertDisputeRejectsDoubleBooking(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)
	_, err = f.svc.Dispute(context.Background(), 10, "hours queried", 99)
	require.NoError(t, err)

	// booked elsewhere while shift 10 was disputed
	f.addShift(11, 1, 12, "09:00:00", "17:00:00", 8, domain.ShiftStatusConfirmed)

	_, err = f.svc.RevertDispute(context.Background(), 10, "resolved", 99)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonOverlap, verr.Reason)
	require.Len(t, verr.Conflicts, 1)
	assert.Equal(t, int64(11), verr.Conflicts[0].ShiftID)
	assert.Equal(t, domain.ShiftStatusDisputed, f.store.shifts[10].Status)
	assert.Equal(t, domain.MethodAdminDisputed, f.store.journey[len(f.store.journey)-1].Method)
}

func TestRevertDisputeRequiresDisputedShift(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RevertDispute(context.Background(), 10, "", 99)

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Assign(context.Background(), 10, 1, AssignOptions{BypassConfirmation: true}, 99)
	require.NoError(t, err)

	res, err := f.svc.MarkNoShow(context.Background(), 10, "did not arrive", 99)
	require.NoError(t, err)

	assert.Equal(t, domain.ShiftStatusNoShow, res.NewStatus)
	assert.Equal(t, domain.MethodAdminNoShow, f.store.journey[len(f.store.journey)-1].Method)
}

func TestStatusBeforeDispute(t *testing.T) {
	entries := []*domain.JourneyEntry{
		{Seq: 4, State: domain.ShiftStatusDisputed},
		{Seq: 1, State: domain.ShiftStatusAssigned},
		{Seq: 3, State: domain.ShiftStatusConfirmed},
		{Seq: 2, State: domain.ShiftStatusDisputed},
	}
	assert.Equal(t, domain.ShiftStatusConfirmed, statusBeforeDispute(entries))

	assert.Equal(t, domain.ShiftStatusOpen, statusBeforeDispute([]*domain.JourneyEntry{{Seq: 1, State: domain.ShiftStatusDisputed}}))
}
