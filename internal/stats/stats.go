package stats

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal/expense"
)

// TechnicianStats is the dashboard summary a technician sees: how much money
// sits in each claim state plus where they stand in the payout queue.
type TechnicianStats struct {
	Pending       decimal.Decimal `json:"pending"`
	Approved      decimal.Decimal `json:"approved"`
	Paid          decimal.Decimal `json:"paid"`
	QueuePosition int64           `json:"queue_position"`
}

// Repository defines the aggregation queries behind the stats view.
type Repository interface {
	SumByStatus(userID int64, status string, month string) (decimal.Decimal, error)
}

// QueuePositioner answers the FIFO queue-position question; satisfied by the
// payout service.
type QueuePositioner interface {
	QueuePosition(technicianID int64) (int64, error)
}

// Service computes the per-technician stats view.
type Service struct {
	repo   Repository
	queue  QueuePositioner
	logger *slog.Logger
}

func NewService(repo Repository, queue QueuePositioner, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		queue:  queue,
		logger: logger,
	}
}

// ForTechnician sums the technician's claims per status, optionally
// restricted to one month. The queue position is never month-filtered: the
// queue is perpetual, so the rank has to reflect every approved claim in the
// system no matter what slice the rest of the view shows.
func (s *Service) ForTechnician(technicianID int64, month string) (*TechnicianStats, error) {
	if err := (expense.ListFilter{Month: month}).Validate(); err != nil {
		return nil, err
	}

	pending, err := s.repo.SumByStatus(technicianID, expense.StatusPending, month)
	if err != nil {
		s.logger.Error("failed to sum pending claims", "error", err, "technician_id", technicianID)
		return nil, err
	}
	approved, err := s.repo.SumByStatus(technicianID, expense.StatusApproved, month)
	if err != nil {
		s.logger.Error("failed to sum approved claims", "error", err, "technician_id", technicianID)
		return nil, err
	}
	paid, err := s.repo.SumByStatus(technicianID, expense.StatusPaid, month)
	if err != nil {
		s.logger.Error("failed to sum paid claims", "error", err, "technician_id", technicianID)
		return nil, err
	}

	position, err := s.queue.QueuePosition(technicianID)
	if err != nil {
		return nil, err
	}

	return &TechnicianStats{
		Pending:       pending,
		Approved:      approved,
		Paid:          paid,
		QueuePosition: position,
	}, nil
}
