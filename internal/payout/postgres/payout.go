package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	expenseDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/expense"
	ledgerDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/ledger"
	payoutDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/payout"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
	"github.com/fieldserve/reimbursement/internal/expense"
	"github.com/fieldserve/reimbursement/internal/ledger"
	ledgerPostgres "github.com/fieldserve/reimbursement/internal/ledger/postgres"
	"github.com/fieldserve/reimbursement/internal/payout"
)

// PayoutRepository implements the payout.Repository interface using GORM.
type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) payout.Repository {
	return &PayoutRepository{db: db}
}

// ApprovedClaims fetches every APPROVED claim ordered by approval time with
// the owning technician's name, the raw material for consolidation.
func (r *PayoutRepository) ApprovedClaims() ([]payout.QueueClaim, error) {
	var rows []*expenseDatamodel.Expense
	err := r.db.Preload("Attachments").
		Where("status = ?", expense.StatusApproved).
		Order("approved_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []payout.QueueClaim{}, nil
	}

	ids := make([]int64, 0, len(rows))
	seen := make(map[int64]bool)
	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			ids = append(ids, row.UserID)
		}
	}

	var users []*userDatamodel.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	claims := make([]payout.QueueClaim, len(rows))
	for i, row := range rows {
		claims[i] = payout.QueueClaim{
			Claim:          expense.FromDataModel(row),
			TechnicianName: names[row.UserID],
		}
	}
	return claims, nil
}

// PerformPayout runs the consolidated disbursement as one transaction:
// lock the ledger, load and lock the technician's approved claims, check the
// balance, then write the batch, the ledger entry and the claim updates.
// Any error rolls the whole unit back.
func (r *PayoutRepository) PerformPayout(technicianID, adminID int64) (*payout.Result, error) {
	var result *payout.Result

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ledgerPostgres.LockLedger(tx); err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}

		q := tx.Where("user_id = ? AND status = ?", technicianID, expense.StatusApproved).
			Order("approved_at ASC")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var rows []*expenseDatamodel.Expense
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return payout.ErrNoOutstandingClaims
		}

		total := decimal.Zero
		ids := make([]int64, len(rows))
		for i, row := range rows {
			total = total.Add(row.Amount)
			ids[i] = row.ID
		}

		balance, err := ledgerPostgres.TailBalance(tx)
		if err != nil {
			return err
		}
		if balance.LessThan(total) {
			return &payout.InsufficientFundsError{Balance: balance, Required: total}
		}

		now := time.Now()
		batch := payoutDatamodel.Batch{
			Reference:    uuid.NewString(),
			TechnicianID: technicianID,
			TotalAmount:  total,
			PaidByID:     adminID,
			CreatedAt:    now,
		}
		if err := tx.Create(&batch).Error; err != nil {
			return fmt.Errorf("create payout batch: %w", err)
		}

		newBalance := ledger.NextBalance(balance, ledger.TypeDisbursement, total)
		entry := ledgerDatamodel.Entry{
			Type:          ledgerDatamodel.EntryTypeDisbursement,
			Amount:        total,
			Balance:       newBalance,
			Description:   fmt.Sprintf("payout batch %s", batch.Reference),
			CreatedBy:     adminID,
			PayoutBatchID: &batch.ID,
			CreatedAt:     now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		res := tx.Model(&expenseDatamodel.Expense{}).
			Where("id IN ? AND status = ?", ids, expense.StatusApproved).
			Updates(map[string]interface{}{
				"status":          expense.StatusPaid,
				"paid_at":         now,
				"payout_batch_id": batch.ID,
				"updated_at":      now,
			})
		if res.Error != nil {
			return fmt.Errorf("mark claims paid: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("marked %d of %d claims paid", res.RowsAffected, len(ids))
		}

		result = &payout.Result{
			BatchID:    batch.ID,
			Reference:  batch.Reference,
			TotalPaid:  total,
			ClaimCount: len(ids),
			NewBalance: newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// OldestApprovedAt finds the approval time of the technician's oldest
// APPROVED claim, nil when none exists.
func (r *PayoutRepository) OldestApprovedAt(technicianID int64) (*time.Time, error) {
	var row expenseDatamodel.Expense
	err := r.db.Where("user_id = ? AND status = ?", technicianID, expense.StatusApproved).
		Order("approved_at ASC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return row.ApprovedAt, nil
}

// CountApprovedBefore counts APPROVED claims across all technicians with an
// approval time strictly before t.
func (r *PayoutRepository) CountApprovedBefore(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&expenseDatamodel.Expense{}).
		Where("status = ? AND approved_at < ?", expense.StatusApproved, t).
		Count(&count).Error
	return count, err
}
