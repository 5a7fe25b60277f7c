package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID              int64           `gorm:"primaryKey"`
	UserID          int64           `gorm:"column:user_id;not null;index"`
	CategoryID      int64           `gorm:"column:category_id;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Description     string          `gorm:"not null"`
	RejectionReason *string         `gorm:"column:rejection_reason"`
	Status          string          `gorm:"column:status;default:PENDING;index:idx_expenses_status_approved_at,priority:1"`
	ExpenseDate     time.Time       `gorm:"column:expense_date;type:date"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at;index:idx_expenses_status_approved_at,priority:2"`
	ApprovedByID    *int64          `gorm:"column:approved_by_id"`
	PaidAt          *time.Time      `gorm:"column:paid_at"`
	PayoutBatchID   *int64          `gorm:"column:payout_batch_id"`
	Attachments     []Attachment    `gorm:"foreignKey:ExpenseID"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

const (
	AttachmentTypeReceipt  = "RECEIPT"
	AttachmentTypeEvidence = "EVIDENCE"
)

type Attachment struct {
	ID        int64     `gorm:"primaryKey"`
	ExpenseID int64     `gorm:"column:expense_id;not null;index"`
	Type      string    `gorm:"column:type;not null"`
	FileURL   string    `gorm:"column:file_url;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Attachment) TableName() string {
	return "expense_attachments"
}
