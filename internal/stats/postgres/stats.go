package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	expenseDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/expense"
	"github.com/fieldserve/reimbursement/internal/stats"
)

// StatsRepository implements the stats.Repository interface using GORM.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) stats.Repository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) SumByStatus(userID int64, status string, month string) (decimal.Decimal, error) {
	q := r.db.Model(&expenseDatamodel.Expense{}).
		Where("user_id = ? AND status = ?", userID, status)

	if month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return decimal.Zero, err
		}
		q = q.Where("expense_date >= ? AND expense_date < ?", start, start.AddDate(0, 1, 0))
	}

	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
