package handler

import (
	"net/http"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Address string `json:"address"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	client := &domain.Client{
		AgencyID: agencyID(r),
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
	}

	if err := h.repository.CreateClient(r.Context(), client); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "client created", client)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientInfoCtx).(*domain.Client)

	h.successResponse(w, r, "client loaded", client)
}
