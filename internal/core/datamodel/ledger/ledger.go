package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EntryTypeTopUp        = "TOP_UP"
	EntryTypeDisbursement = "DISBURSEMENT"
)

// Entry is one append-only row of the operational cash ledger. Balance is
// the materialized balance after this entry, not a delta.
type Entry struct {
	ID            int64           `gorm:"primaryKey"`
	Type          string          `gorm:"column:type;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Balance       decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null"`
	Description   string          `gorm:"column:description"`
	CreatedBy     int64           `gorm:"column:created_by;not null"`
	PayoutBatchID *int64          `gorm:"column:payout_batch_id"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "operational_ledger"
}
