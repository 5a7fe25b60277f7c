package auth

import (
	"encoding/json"
	"errors"
	"net/http"

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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Authenticate(dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// toAppError maps auth domain errors onto the transport error taxonomy.
func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return internal.ErrInvalidCredentials
	case errors.Is(err, ErrUserInactive):
		return internal.NewForbiddenError(err.Error(), internal.ErrCodeInvalidCredentials)
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return internal.ErrInvalidToken
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
}
