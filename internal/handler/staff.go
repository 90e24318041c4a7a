package handler

import (
	"errors"
	"net/http"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    *int64 `json:"userID"`
		FirstName string `json:"firstName" validate:"required"`
		LastName  string `json:"lastName" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"omitempty,e164"`
		Role      string `json:"role" validate:"required,oneof=nurse healthcare_assistant senior_care_worker support_worker"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	staff := &domain.Staff{
		AgencyID:  agencyID(r),
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      domain.StaffRole(req.Role),
		Status:    domain.StaffStatusActive,
	}

	if err := h.repository.CreateStaff(r.Context(), staff); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "staff_agency_email_key":
				h.errorResponse(w, r, "a staff member with this email already exists")
			case "staff_user_id_key":
				h.errorResponse(w, r, "this account already has a staff profile")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "staff created", staff)
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	staff := r.Context().Value(StaffInfoCtx).(*domain.Staff)

	h.successResponse(w, r, "staff loaded", staff)
}

func (h *Handler) GetMyStaffProfile(w http.ResponseWriter, r *http.Request) {
	staff := r.Context().Value(MyStaffCtx).(*domain.Staff)

	h.successResponse(w, r, "profile loaded", staff)
}
