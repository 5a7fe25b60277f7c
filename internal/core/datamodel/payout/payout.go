package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is one consolidated disbursement event. TotalAmount is fixed at
// creation and never mutated afterward.
type Batch struct {
	ID           int64           `gorm:"primaryKey"`
	Reference    string          `gorm:"column:reference;not null;uniqueIndex"`
	TechnicianID int64           `gorm:"column:technician_id;not null;index"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`
	PaidByID     int64           `gorm:"column:paid_by_id;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Batch) TableName() string {
	return "payout_batches"
}
