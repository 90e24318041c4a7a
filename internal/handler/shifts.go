package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/assignment"
	"github.com/carelink-staffing/shift-core/backend/internal/closure"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/notify"
	"github.com/carelink-staffing/shift-core/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

const dateLayout = "2006-01-02"

// withNotification appends a warning to msg when some channel failed or the
// dispatch was still running.
func withNotification(msg string, o domain.NotificationOutcome) string {
	switch {
	case o.Partial():
		return msg + ", but some notifications could not be sent"
	case o.Pending:
		return msg + ", notifications are still being sent"
	}
	return msg
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID     int64   `json:"clientID" validate:"required"`
		RoleRequired string  `json:"roleRequired" validate:"required,oneof=nurse healthcare_assistant senior_care_worker support_worker"`
		Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
		StartTime    string  `json:"startTime" validate:"required"`
		EndTime      string  `json:"endTime" validate:"required"`
		BreakMinutes int32   `json:"breakDurationMinutes" validate:"min=0"`
		PayRate      float64 `json:"payRate" validate:"gte=0"`
		ChargeRate   float64 `json:"chargeRate" validate:"gte=0"`
		Urgency      string  `json:"urgency" validate:"omitempty,oneof=normal urgent critical"`
		WorkLocation *string `json:"workLocationWithinSite"`
		Notes        string  `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, _ := time.Parse(dateLayout, req.Date)
	shift := &domain.Shift{
		AgencyID:     agencyID(r),
		ClientID:     req.ClientID,
		RoleRequired: domain.StaffRole(req.RoleRequired),
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		PayRate:      req.PayRate,
		ChargeRate:   req.ChargeRate,
		Urgency:      domain.Urgency(req.Urgency),
		WorkLocation: req.WorkLocation,
		Notes:        req.Notes,
	}
	if shift.Urgency == "" {
		shift.Urgency = domain.UrgencyNormal
	}

	if err := utils.ValidateShiftTimes(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRates(shift.PayRate, shift.ChargeRate); err != nil {
		h.badRequest(w, r, err)
		return
	}
	shift.DurationHours, _ = domain.SpanHours(shift.StartTime, shift.EndTime)

	client, err := h.repository.GetClient(r.Context(), shift.ClientID)
	if err != nil || client.AgencyID != shift.AgencyID {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "client not found")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.CreateShift(r.Context(), shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shifts_client_id_fkey":
				h.errorResponse(w, r, "client not found")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift created", shift)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	// staff only see shifts they hold
	if role(r) == domain.UserRoleStaff {
		staff, err := h.repository.GetStaffByUserID(r.Context(), actorID(r))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			h.internalServerError(w, r, err)
			return
		}
		if staff == nil || !shift.IsAssignedTo(staff.ID) {
			h.errorResponse(w, r, "shift not found")
			return
		}
	}

	h.successResponse(w, r, "shift loaded", shift)
}

func (h *Handler) GetShiftJourney(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	journey, err := h.repository.ListJourney(r.Context(), shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift journey loaded", journey)
}

func (h *Handler) GetShiftTimesheet(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	ts, err := h.repository.GetTimesheetByShift(r.Context(), shift.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "the shift has no timesheet yet")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "timesheet loaded", ts)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Date            *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
		StartTime       *string  `json:"startTime"`
		EndTime         *string  `json:"endTime"`
		DurationHours   *float64 `json:"durationHours" validate:"omitempty,gt=0,lte=24"`
		BreakMinutes    *int32   `json:"breakDurationMinutes" validate:"omitempty,min=0"`
		PayRate         *float64 `json:"payRate" validate:"omitempty,gte=0"`
		ChargeRate      *float64 `json:"chargeRate" validate:"omitempty,gte=0"`
		WorkLocation    *string  `json:"workLocationWithinSite"`
		Urgency         *string  `json:"urgency" validate:"omitempty,oneof=normal urgent critical"`
		Notes           *string  `json:"notes"`
		AssignedStaffID *int64   `json:"assignedStaffID" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	upd := &domain.ShiftUpdate{
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationHours:   req.DurationHours,
		BreakMinutes:    req.BreakMinutes,
		PayRate:         req.PayRate,
		ChargeRate:      req.ChargeRate,
		WorkLocation:    req.WorkLocation,
		Notes:           req.Notes,
		AssignedStaffID: req.AssignedStaffID,
	}
	if req.Date != nil {
		date, _ := time.Parse(dateLayout, *req.Date)
		upd.Date = &date
	}
	if req.Urgency != nil {
		urgency := domain.Urgency(*req.Urgency)
		upd.Urgency = &urgency
	}

	// validate the merged times and rates before touching the service
	merged := *shift
	if upd.StartTime != nil {
		merged.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		merged.EndTime = *upd.EndTime
	}
	if upd.BreakMinutes != nil {
		merged.BreakMinutes = *upd.BreakMinutes
	}
	if err := utils.ValidateShiftTimes(&merged); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if upd.PayRate != nil || upd.ChargeRate != nil {
		pay, charge := shift.PayRate, shift.ChargeRate
		if upd.PayRate != nil {
			pay = *upd.PayRate
		}
		if upd.ChargeRate != nil {
			charge = *upd.ChargeRate
		}
		if err := utils.ValidateRates(pay, charge); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	res, err := h.assignment.UpdateShift(r.Context(), shift.ID, upd, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	msg := "shift updated"
	if res.Reassigned {
		msg = withNotification("shift updated and reassigned", res.Notification)
	}
	h.successResponse(w, r, msg, res)
}

func (h *Handler) AssignShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		StaffID            int64 `json:"staffID" validate:"required"`
		BypassConfirmation bool  `json:"bypassConfirmation"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	opts := assignment.AssignOptions{BypassConfirmation: req.BypassConfirmation}
	res, err := h.assignment.Assign(r.Context(), shift.ID, req.StaffID, opts, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if res.NoOp {
		h.successResponse(w, r, "staff already assigned to this shift", res)
		return
	}
	h.successResponse(w, r, withNotification("shift assigned to "+res.StaffName, res.Notification), res)
}

// ConfirmShift confirms the assignment. Staff may only confirm their own
// shift; office users confirm on the staff member's behalf.
func (h *Handler) ConfirmShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var opts assignment.ConfirmOptions
	if role(r) == domain.UserRoleStaff {
		staff, err := h.repository.GetStaffByUserID(r.Context(), actorID(r))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "no staff profile for this account")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		opts.StaffID = &staff.ID
	}

	res, err := h.assignment.Confirm(r.Context(), shift.ID, opts, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if res.NoOp {
		h.successResponse(w, r, "shift already confirmed", res)
		return
	}
	h.successResponse(w, r, withNotification("shift confirmed", res.Notification), res)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type requiredReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) UnassignShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req reasonRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.assignment.Unassign(r.Context(), shift.ID, req.Reason, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if res.NoOp {
		h.successResponse(w, r, "shift has no assignee", res)
		return
	}
	h.successResponse(w, r, withNotification("staff removed from shift", res.Notification), res)
}

func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req requiredReasonRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.assignment.Cancel(r.Context(), shift.ID, req.Reason, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if res.NoOp {
		h.successResponse(w, r, "shift already cancelled", res)
		return
	}
	h.successResponse(w, r, withNotification("shift cancelled", res.Notification), res)
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Notes string `json:"notes"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.assignment.MarkNoShow(r.Context(), shift.ID, req.Notes, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift marked as no-show", res)
}

func (h *Handler) DisputeShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req requiredReasonRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.assignment.Dispute(r.Context(), shift.ID, req.Reason, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift disputed", res)
}

func (h *Handler) RevertDispute(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Notes string `json:"notes"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.assignment.RevertDispute(r.Context(), shift.ID, req.Notes, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "dispute reverted", res)
}

func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req closure.CompletionInput
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.closure.Complete(r.Context(), shift.ID, req, actorID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift completed", res)
}

func (h *Handler) BroadcastShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		ConfirmRebroadcast bool `json:"confirmRebroadcast"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.broadcaster.Broadcast(r.Context(), shift.ID, notify.BroadcastOptions{
		ConfirmRebroadcast: req.ConfirmRebroadcast,
		ActorID:            actorID(r),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	msg := "urgent shift broadcast sent"
	if res.Partial() {
		msg = "urgent shift broadcast sent, but some staff could not be reached"
	}
	h.successResponse(w, r, msg, res)
}

// LockFinancials freezes the shift's money fields after timesheet approval.
func (h *Handler) LockFinancials(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if shift.FinancialLocked {
		h.successResponse(w, r, "shift already financially locked", shift)
		return
	}

	if err := h.repository.LockShiftFinancials(r.Context(), shift.ID, actorID(r), time.Now()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	shift, err := h.repository.GetShift(r.Context(), shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift financially locked", shift)
}
