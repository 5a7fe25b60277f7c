package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fieldserve/reimbursement/internal"
	"github.com/fieldserve/reimbursement/internal/transport"
	"github.com/fieldserve/reimbursement/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Service.CreateCategory(dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var dto UpdateCategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Service.UpdateCategory(id, dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.Service.DeleteCategory(id); err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toAppError maps category domain errors onto the transport error taxonomy.
func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		return internal.ErrCategoryNotFound
	case errors.Is(err, ErrDuplicateName):
		return internal.NewConflictError(err.Error(), internal.ErrCodeDuplicateName)
	}
	return err
}
