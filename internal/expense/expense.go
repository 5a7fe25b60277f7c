package expense

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	expenseDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/expense"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusPaid     = "PAID"
)

const (
	AttachmentTypeReceipt  = expenseDatamodel.AttachmentTypeReceipt
	AttachmentTypeEvidence = expenseDatamodel.AttachmentTypeEvidence

	MaxEvidenceAttachments = 3
)

type Attachment struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	FileURL string `json:"file_url"`
}

// Claim is a single technician-submitted reimbursement request.
type Claim struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	CategoryID      int64           `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	Status          string          `json:"status"`
	ExpenseDate     time.Time       `json:"expense_date"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedByID    *int64          `json:"approved_by_id,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PayoutBatchID   *int64          `json:"payout_batch_id,omitempty"`
	Attachments     []Attachment    `json:"attachments,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (c *Claim) CanBeApproved() bool {
	return c.Status == StatusPending
}

func (c *Claim) CanBeRejected() bool {
	return c.Status == StatusPending
}

func (c *Claim) CanBePaid() bool {
	return c.Status == StatusApproved
}

// Approve moves a pending claim to APPROVED. The timestamp is the FIFO sort
// key for the payout queue, so callers must take it from the approval clock.
func (c *Claim) Approve(adminID int64, correctedAmount *decimal.Decimal, at time.Time) error {
	if !c.CanBeApproved() {
		return ErrInvalidTransition
	}
	if correctedAmount != nil {
		if correctedAmount.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidAmount
		}
		c.Amount = *correctedAmount
	}
	c.Status = StatusApproved
	c.ApprovedAt = &at
	c.ApprovedByID = &adminID
	c.UpdatedAt = at
	return nil
}

func (c *Claim) Reject(reason string, at time.Time) error {
	if !c.CanBeRejected() {
		return ErrInvalidTransition
	}
	if reason == "" {
		return ErrEmptyReason
	}
	c.Status = StatusRejected
	c.RejectionReason = &reason
	c.UpdatedAt = at
	return nil
}

// ApprovalClock hands out strictly increasing timestamps shared by every
// approval in the process. approved_at is the sole FIFO ordering key, so two
// approvals racing within the same clock tick must still come out ordered.
type ApprovalClock struct {
	mu   sync.Mutex
	last time.Time
}

func NewApprovalClock() *ApprovalClock {
	return &ApprovalClock{}
}

func (c *ApprovalClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}

func ToDataModel(c *Claim) *expenseDatamodel.Expense {
	attachments := make([]expenseDatamodel.Attachment, len(c.Attachments))
	for i, a := range c.Attachments {
		attachments[i] = expenseDatamodel.Attachment{
			ID:        a.ID,
			ExpenseID: c.ID,
			Type:      a.Type,
			FileURL:   a.FileURL,
		}
	}
	return &expenseDatamodel.Expense{
		ID:              c.ID,
		UserID:          c.UserID,
		CategoryID:      c.CategoryID,
		Amount:          c.Amount,
		Description:     c.Description,
		RejectionReason: c.RejectionReason,
		Status:          c.Status,
		ExpenseDate:     c.ExpenseDate,
		ApprovedAt:      c.ApprovedAt,
		ApprovedByID:    c.ApprovedByID,
		PaidAt:          c.PaidAt,
		PayoutBatchID:   c.PayoutBatchID,
		Attachments:     attachments,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Claim {
	attachments := make([]Attachment, len(e.Attachments))
	for i, a := range e.Attachments {
		attachments[i] = Attachment{
			ID:      a.ID,
			Type:    a.Type,
			FileURL: a.FileURL,
		}
	}
	return &Claim{
		ID:              e.ID,
		UserID:          e.UserID,
		CategoryID:      e.CategoryID,
		Amount:          e.Amount,
		Description:     e.Description,
		RejectionReason: e.RejectionReason,
		Status:          e.Status,
		ExpenseDate:     e.ExpenseDate,
		ApprovedAt:      e.ApprovedAt,
		ApprovedByID:    e.ApprovedByID,
		PaidAt:          e.PaidAt,
		PayoutBatchID:   e.PayoutBatchID,
		Attachments:     attachments,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Claim {
	result := make([]*Claim, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
