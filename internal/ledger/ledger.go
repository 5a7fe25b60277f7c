package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	ledgerDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/ledger"
)

const (
	TypeTopUp        = ledgerDatamodel.EntryTypeTopUp
	TypeDisbursement = ledgerDatamodel.EntryTypeDisbursement
)

// Entry is one balance-affecting event. The current balance of the cash
// ledger is the Balance of the newest entry, never a sum over deltas.
type Entry struct {
	ID            int64           `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Description   string          `json:"description"`
	CreatedBy     int64           `json:"created_by"`
	PayoutBatchID *int64          `json:"payout_batch_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NextBalance applies an entry's movement to the running balance.
func NextBalance(prev decimal.Decimal, entryType string, amount decimal.Decimal) decimal.Decimal {
	if entryType == TypeDisbursement {
		return prev.Sub(amount)
	}
	return prev.Add(amount)
}

func ToDataModel(e *Entry) *ledgerDatamodel.Entry {
	return &ledgerDatamodel.Entry{
		ID:            e.ID,
		Type:          e.Type,
		Amount:        e.Amount,
		Balance:       e.Balance,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		PayoutBatchID: e.PayoutBatchID,
		CreatedAt:     e.CreatedAt,
	}
}

func FromDataModel(e *ledgerDatamodel.Entry) *Entry {
	return &Entry{
		ID:            e.ID,
		Type:          e.Type,
		Amount:        e.Amount,
		Balance:       e.Balance,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		PayoutBatchID: e.PayoutBatchID,
		CreatedAt:     e.CreatedAt,
	}
}

func FromDataModelSlice(entries []*ledgerDatamodel.Entry) []*Entry {
	result := make([]*Entry, len(entries))
	for i, e := range entries {
		result[i] = FromDataModel(e)
	}
	return result
}
