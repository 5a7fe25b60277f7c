package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	ledgerDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/ledger"
	"github.com/fieldserve/reimbursement/internal/ledger"
)

// ledgerLockID keys the advisory transaction lock serializing every
// read-balance-then-append sequence against the ledger.
const ledgerLockID int64 = 0x6c656467

// LockLedger takes the ledger-wide advisory lock for the current
// transaction. Payouts and top-ups both go through here, so two concurrent
// writers can never decide against the same stale balance. SQLite serializes
// writers on its own, hence the dialect check.
func LockLedger(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", ledgerLockID).Error
}

// TailBalance reads the materialized balance of the newest ledger entry,
// zero when the ledger is empty. Call only while holding the ledger lock if
// the result feeds a write.
func TailBalance(tx *gorm.DB) (decimal.Decimal, error) {
	var tail ledgerDatamodel.Entry
	err := tx.Order("created_at DESC, id DESC").First(&tail).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return tail.Balance, nil
}

// LedgerRepository implements the ledger.Repository interface using GORM.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) ledger.Repository {
	return &LedgerRepository{db: db}
}

// AppendTopUp reads the tail balance and inserts the TOP_UP entry in one
// locked transaction.
func (r *LedgerRepository) AppendTopUp(amount decimal.Decimal, description string, createdBy int64) (*ledger.Entry, error) {
	var row ledgerDatamodel.Entry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := LockLedger(tx); err != nil {
			return err
		}

		balance, err := TailBalance(tx)
		if err != nil {
			return err
		}

		row = ledgerDatamodel.Entry{
			Type:        ledgerDatamodel.EntryTypeTopUp,
			Amount:      amount,
			Balance:     ledger.NextBalance(balance, ledger.TypeTopUp, amount),
			Description: description,
			CreatedBy:   createdBy,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	return ledger.FromDataModel(&row), nil
}

func (r *LedgerRepository) CurrentBalance() (decimal.Decimal, error) {
	return TailBalance(r.db)
}

func (r *LedgerRepository) List(limit, offset int) ([]*ledger.Entry, error) {
	var rows []*ledgerDatamodel.Entry
	err := r.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ledger.FromDataModelSlice(rows), nil
}
