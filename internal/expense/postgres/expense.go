package postgres

import (
	"time"

	"gorm.io/gorm"

	expenseDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/expense"
	"github.com/fieldserve/reimbursement/internal/expense"
)

// ClaimRepository implements the expense.Repository interface using GORM.
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) expense.Repository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(claim *expense.Claim) error {
	row := expense.ToDataModel(claim)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	*claim = *expense.FromDataModel(row)
	return nil
}

func (r *ClaimRepository) GetByID(id int64) (*expense.Claim, error) {
	var row expenseDatamodel.Expense
	err := r.db.Preload("Attachments").Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, expense.ErrClaimNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&row), nil
}

func (r *ClaimRepository) List(filter expense.ListFilter) ([]*expense.Claim, error) {
	q := r.db.Preload("Attachments").Order("created_at DESC")

	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Month != "" {
		// month is validated as YYYY-MM upstream; filter on the expense date
		start, err := time.Parse("2006-01", filter.Month)
		if err != nil {
			return nil, err
		}
		q = q.Where("expense_date >= ? AND expense_date < ?", start, start.AddDate(0, 1, 0))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []*expenseDatamodel.Expense
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

// SaveApproval persists the APPROVED transition. The status predicate guards
// against a concurrent approve/reject/payout racing the in-memory check.
func (r *ClaimRepository) SaveApproval(claim *expense.Claim) error {
	res := r.db.Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND status = ?", claim.ID, expense.StatusPending).
		Updates(map[string]interface{}{
			"status":         claim.Status,
			"amount":         claim.Amount,
			"approved_at":    claim.ApprovedAt,
			"approved_by_id": claim.ApprovedByID,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrInvalidTransition
	}
	return nil
}

// SaveRejection persists the REJECTED transition with the same status guard.
func (r *ClaimRepository) SaveRejection(claim *expense.Claim) error {
	res := r.db.Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND status = ?", claim.ID, expense.StatusPending).
		Updates(map[string]interface{}{
			"status":           claim.Status,
			"rejection_reason": claim.RejectionReason,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expense.ErrInvalidTransition
	}
	return nil
}
