package payout

import (
	"errors"
	"log/slog"
	"time"
)

// Repository defines the data access methods for the payout queue and the
// disbursement transaction. PerformPayout must execute its balance check and
// all three writes (batch, ledger entry, claim updates) as one isolated
// all-or-nothing unit.
type Repository interface {
	ApprovedClaims() ([]QueueClaim, error)
	PerformPayout(technicianID, adminID int64) (*Result, error)
	OldestApprovedAt(technicianID int64) (*time.Time, error)
	CountApprovedBefore(t time.Time) (int64, error)
}

// Service handles queue consolidation, disbursement and queue position.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Queue returns the consolidated payout queue grouped by technician,
// ordered by each technician's oldest approval.
func (s *Service) Queue() ([]*QueueGroup, error) {
	claims, err := s.repo.ApprovedClaims()
	if err != nil {
		s.logger.Error("failed to load approved claims", "error", err)
		return nil, err
	}
	return Consolidate(claims), nil
}

// PayoutTechnician disburses every approved claim the technician is owed in
// one atomic transaction. A failed transaction leaves no trace; it is never
// retried automatically because a false negative on commit could
// double-disburse.
func (s *Service) PayoutTechnician(technicianID, adminID int64) (*Result, error) {
	result, err := s.repo.PerformPayout(technicianID, adminID)
	if err != nil {
		var insufficient *InsufficientFundsError
		switch {
		case errors.Is(err, ErrNoOutstandingClaims):
			s.logger.Warn("payout with nothing to pay", "technician_id", technicianID)
		case errors.As(err, &insufficient):
			s.logger.Warn("payout refused, insufficient funds",
				"technician_id", technicianID,
				"balance", insufficient.Balance,
				"required", insufficient.Required)
		default:
			s.logger.Error("payout transaction failed, rolled back",
				"error", err,
				"technician_id", technicianID,
				"admin_id", adminID)
		}
		return nil, err
	}

	s.logger.Info("payout committed",
		"technician_id", technicianID,
		"admin_id", adminID,
		"batch_id", result.BatchID,
		"reference", result.Reference,
		"claims", result.ClaimCount,
		"total", result.TotalPaid,
		"new_balance", result.NewBalance)

	return result, nil
}

// QueuePosition ranks the technician's oldest approved claim against every
// approved claim in the system: the count of claims approved strictly
// earlier, plus one. Zero when nothing is outstanding. Deliberately immune
// to the month filter the rest of the stats view applies, since the queue
// is a perpetual structure.
func (s *Service) QueuePosition(technicianID int64) (int64, error) {
	oldest, err := s.repo.OldestApprovedAt(technicianID)
	if err != nil {
		s.logger.Error("failed to find oldest approved claim", "error", err, "technician_id", technicianID)
		return 0, err
	}
	if oldest == nil {
		return 0, nil
	}

	ahead, err := s.repo.CountApprovedBefore(*oldest)
	if err != nil {
		s.logger.Error("failed to count queue predecessors", "error", err, "technician_id", technicianID)
		return 0, err
	}

	return ahead + 1, nil
}
