package payout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

// Queue returns the consolidated payout queue for the admin view.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.Queue()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, groups)
}

// PayoutTechnician triggers the consolidated disbursement for one
// technician.
func (h *Handler) PayoutTechnician(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	technicianID, err := strconv.ParseInt(chi.URLParam(r, "technicianId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid technician id")
		return
	}

	result, err := h.Service.PayoutTechnician(technicianID, user.ID)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// toAppError maps payout domain errors onto the transport error taxonomy.
// The insufficient-funds message names the exact shortfall so the admin can
// top up and retry; retrying is always the admin's call, never automatic.
func toAppError(err error) error {
	var insufficient *InsufficientFundsError
	switch {
	case errors.Is(err, ErrNoOutstandingClaims):
		return internal.NewUnprocessableError(err.Error(), internal.ErrCodeNoOutstandingClaims)
	case errors.As(err, &insufficient):
		return internal.NewUnprocessableError(insufficient.Error(), internal.ErrCodeInsufficientFunds).
			WithDetails(map[string]string{
				"balance":   insufficient.Balance.StringFixed(2),
				"required":  insufficient.Required.StringFixed(2),
				"shortfall": insufficient.Shortfall().StringFixed(2),
			})
	}
	return err
}
