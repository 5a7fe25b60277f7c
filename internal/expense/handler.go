package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal"
	"github.com/fieldserve/reimbursement/internal/auth"
	"github.com/fieldserve/reimbursement/internal/transport"
	"github.com/fieldserve/reimbursement/pkg/logger"
)

const maxUploadBytes = 32 << 20

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

// SubmitClaim handles the multipart submission form: JSON-ish fields plus
// one receipt image and up to three evidence images.
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.Logger.Error("SubmitClaim: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dto, err := parseSubmitForm(r)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	var receipt *FileUpload
	if file, header, err := r.FormFile("receipt"); err == nil {
		defer file.Close()
		receipt = &FileUpload{Filename: header.Filename, Reader: file}
	}

	var evidence []FileUpload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["evidence"] {
			file, err := header.Open()
			if err != nil {
				h.WriteError(w, http.StatusBadRequest, "invalid evidence upload")
				return
			}
			defer file.Close()
			evidence = append(evidence, FileUpload{Filename: header.Filename, Reader: file})
		}
	}

	claim, err := h.Service.SubmitClaim(r.Context(), user.ID, dto, receipt, evidence)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, claim)
}

func parseSubmitForm(r *http.Request) (SubmitClaimDTO, error) {
	var dto SubmitClaimDTO

	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		return dto, ErrInvalidAmount
	}
	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil {
		return dto, internal.NewValidationError("category is required", internal.ErrCodeValidationFailed)
	}
	expenseDate, err := time.Parse("2006-01-02", r.FormValue("expense_date"))
	if err != nil {
		return dto, internal.NewValidationError("expense date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}

	dto.Amount = amount
	dto.CategoryID = categoryID
	dto.ExpenseDate = expenseDate
	dto.Description = r.FormValue("description")
	return dto, nil
}

func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.Service.GetClaimByID(id, user.ID, user.Role)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
		Limit:  limit,
		Offset: offset,
	}

	claims, err := h.Service.ListClaims(filter, user.ID, user.Role)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, claims)
}

func (h *Handler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var dto ApproveClaimDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.Service.ApproveClaim(id, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var dto RejectClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.RejectClaim(id, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// toAppError maps claim domain errors onto the transport error taxonomy.
func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrClaimNotFound):
		return internal.ErrClaimNotFound
	case errors.Is(err, ErrInvalidTransition):
		return internal.NewConflictError(err.Error(), internal.ErrCodeInvalidTransition)
	case errors.Is(err, ErrInvalidAmount):
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidAmount)
	case errors.Is(err, ErrEmptyReason):
		return internal.NewValidationError(err.Error(), internal.ErrCodeEmptyReason)
	case errors.Is(err, ErrMissingReceipt):
		return internal.NewValidationError(err.Error(), internal.ErrCodeMissingReceipt)
	case errors.Is(err, ErrTooManyEvidence):
		return internal.NewValidationError(err.Error(), internal.ErrCodeTooManyEvidence)
	}
	return err
}
