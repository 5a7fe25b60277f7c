package expense

import (
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal"
)

// SubmitClaimDTO is the form payload for a new claim. Attachments come in
// separately from the multipart parts.
type SubmitClaimDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"category_id"`
	ExpenseDate time.Time       `json:"expense_date"`
}

func (dto SubmitClaimDTO) Validate() error {
	if dto.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if dto.Description == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Description) > 500 {
		return internal.NewValidationError("description must be less than 500 characters", internal.ErrCodeValidationFailed)
	}
	if dto.CategoryID <= 0 {
		return internal.NewValidationError("category is required", internal.ErrCodeValidationFailed)
	}
	if dto.ExpenseDate.IsZero() {
		return internal.NewValidationError("expense date is required", internal.ErrCodeValidationFailed)
	}
	if dto.ExpenseDate.After(time.Now()) {
		return internal.NewValidationError("expense date cannot be in the future", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ApproveClaimDTO carries the optionally corrected amount an admin may set
// after checking the receipt photo.
type ApproveClaimDTO struct {
	CorrectedAmount *decimal.Decimal `json:"corrected_amount,omitempty"`
}

func (dto ApproveClaimDTO) Validate() error {
	if dto.CorrectedAmount != nil && dto.CorrectedAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

type RejectClaimDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectClaimDTO) Validate() error {
	if dto.Reason == "" {
		return ErrEmptyReason
	}
	return nil
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ListFilter narrows the admin claim listing. Month is YYYY-MM against the
// expense date; empty fields mean no filtering.
type ListFilter struct {
	Status string
	Month  string
	UserID int64
	Limit  int
	Offset int
}

func (f ListFilter) Validate() error {
	switch f.Status {
	case "", StatusPending, StatusApproved, StatusRejected, StatusPaid:
	default:
		return internal.NewValidationError("unknown status filter", internal.ErrCodeValidationFailed)
	}
	if f.Month != "" && !monthPattern.MatchString(f.Month) {
		return internal.NewValidationError("month filter must be YYYY-MM", internal.ErrCodeInvalidMonth)
	}
	return nil
}

type ApproveResponse struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	ApprovedAt time.Time `json:"approved_at"`
}

type RejectResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Domain errors
var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrInvalidTransition = errors.New("claim status does not allow this transition")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrEmptyReason       = errors.New("rejection reason is required")
	ErrMissingReceipt    = errors.New("exactly one receipt image is required")
	ErrTooManyEvidence   = errors.New("at most three evidence images are allowed")
)
