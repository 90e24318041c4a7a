package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/notify"
	"github.com/jackc/pgx/v5/pgconn"
)

// serviceError turns an error from the assignment, closure or broadcast
// services into a response. Typed errors go back as data.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		lockErr       *domain.FinancialLockViolation
		transitionErr *domain.TransitionError
		rebroadcast   *domain.RebroadcastConfirmationRequired
		pgErr         *pgconn.PgError
	)

	switch {
	case errors.As(err, &validationErr):
		h.failResponse(w, r, validationErr.Error(), validationErr)
	case errors.As(err, &conflictErr):
		h.failResponse(w, r, conflictErr.Error(), conflictErr)
	case errors.As(err, &lockErr):
		h.failResponse(w, r, lockErr.Error(), lockErr)
	case errors.As(err, &transitionErr):
		h.failResponse(w, r, transitionErr.Error(), transitionErr)
	case errors.As(err, &rebroadcast):
		h.failResponse(w, r, rebroadcast.Error(), rebroadcast)
	case errors.Is(err, notify.ErrBroadcastInProgress):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		h.errorResponse(w, r, "the shift was changed by someone else, please reload and try again")
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "record not found")
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "bookings_one_active_per_shift":
			h.errorResponse(w, r, "the shift already has an active booking")
		case "shifts_assigned_staff_id_fkey":
			h.errorResponse(w, r, "staff not found")
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}
