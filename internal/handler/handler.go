package handler

import (
	"context"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/assignment"
	"github.com/carelink-staffing/shift-core/backend/internal/closure"
	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Repository is the part of *repository.Repository the handlers read and
// write directly. Lifecycle changes always go through the services.
type Repository interface {
	GetShift(ctx context.Context, id int64) (*domain.Shift, error)
	CreateShift(ctx context.Context, shift *domain.Shift) error
	ListJourney(ctx context.Context, shiftID int64) ([]*domain.JourneyEntry, error)
	GetTimesheetByShift(ctx context.Context, shiftID int64) (*domain.Timesheet, error)
	LockShiftFinancials(ctx context.Context, shiftID int64, actorID int64, at time.Time) error

	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	GetStaffByUserID(ctx context.Context, userID int64) (*domain.Staff, error)
	CreateStaff(ctx context.Context, s *domain.Staff) error

	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error
}

type Assigner interface {
	Assign(ctx context.Context, shiftID, staffID int64, opts assignment.AssignOptions, actorID int64) (*assignment.Result, error)
	Confirm(ctx context.Context, shiftID int64, opts assignment.ConfirmOptions, actorID int64) (*assignment.Result, error)
	Unassign(ctx context.Context, shiftID int64, reason string, actorID int64) (*assignment.Result, error)
	Cancel(ctx context.Context, shiftID int64, reason string, actorID int64) (*assignment.Result, error)
	MarkNoShow(ctx context.Context, shiftID int64, notes string, actorID int64) (*assignment.Result, error)
	Dispute(ctx context.Context, shiftID int64, reason string, actorID int64) (*assignment.Result, error)
	RevertDispute(ctx context.Context, shiftID int64, notes string, actorID int64) (*assignment.Result, error)
	UpdateShift(ctx context.Context, shiftID int64, upd *domain.ShiftUpdate, actorID int64) (*assignment.UpdateResult, error)
}

type Completer interface {
	Complete(ctx context.Context, shiftID int64, in closure.CompletionInput, actorID int64) (*closure.Result, error)
}

type Broadcaster interface {
	Broadcast(ctx context.Context, shiftID int64, opts notify.BroadcastOptions) (*notify.BroadcastResult, error)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	translator  ut.Translator
	repository  Repository
	assignment  Assigner
	closure     Completer
	broadcaster Broadcaster

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Repository, assigner Assigner, completer Completer, broadcaster Broadcaster) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		translator:  trans,
		repository:  repo,
		assignment:  assigner,
		closure:     completer,
		broadcaster: broadcaster,

		Mux: chi.NewRouter(),
	}, nil
}

var (
	admins = []domain.UserRole{domain.UserRoleAgencyAdmin}
	office = []domain.UserRole{domain.UserRoleAgencyAdmin, domain.UserRoleManager}
)

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	// everything below needs a valid access token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/me", func(r chi.Router) {
			r.Use(h.myStaff)
			r.Get("/", h.GetMyStaffProfile)
		})

		r.Route("/staff", func(r chi.Router) {
			r.With(h.RequiredRole(admins)).Post("/", h.CreateStaff)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequiredRole(office))
				r.Use(h.staffInfo)
				r.Get("/", h.GetStaff)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.With(h.RequiredRole(admins)).Post("/", h.CreateClient)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequiredRole(office))
				r.Use(h.clientInfo)
				r.Get("/", h.GetClient)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole(office)).Post("/", h.CreateShift)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.Get("/", h.GetShift)
				r.Post("/confirm", h.ConfirmShift) // staff confirm their own shifts here too

				r.Group(func(r chi.Router) {
					r.Use(h.RequiredRole(office))
					r.Get("/journey", h.GetShiftJourney)
					r.Get("/timesheet", h.GetShiftTimesheet)
					r.Patch("/", h.UpdateShift)
					r.Post("/assign", h.AssignShift)
					r.Post("/unassign", h.UnassignShift)
					r.Post("/cancel", h.CancelShift)
					r.Post("/no-show", h.MarkNoShow)
					r.Post("/dispute", h.DisputeShift)
					r.Post("/broadcast", h.BroadcastShift)
				})

				r.Group(func(r chi.Router) {
					r.Use(h.RequiredRole(admins))
					r.Post("/revert-dispute", h.RevertDispute)
					r.Post("/complete", h.CompleteShift)
					r.Post("/lock-financials", h.LockFinancials)
				})
			})
		})
	})
}
