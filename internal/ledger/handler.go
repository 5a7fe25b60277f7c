package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fieldserve/reimbursement/internal"
	"github.com/fieldserve/reimbursement/internal/auth"
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

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.CurrentBalance()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.Service.History(limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TopUpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.TopUp(dto, user.ID)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// toAppError maps ledger domain errors onto the transport error taxonomy.
func toAppError(err error) error {
	if errors.Is(err, ErrInvalidTopUpAmount) {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidAmount)
	}
	return err
}
