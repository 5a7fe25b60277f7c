package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Repository defines the data access methods for the operational ledger.
// AppendTopUp must read the current balance and insert the new entry inside
// one isolated unit, so a racing payout can never produce a stale balance.
type Repository interface {
	AppendTopUp(amount decimal.Decimal, description string, createdBy int64) (*Entry, error)
	CurrentBalance() (decimal.Decimal, error)
	List(limit, offset int) ([]*Entry, error)
}

// Service handles top-ups and balance views of the operational cash ledger.
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

// TopUp records incoming operational funds and returns the new balance.
func (s *Service) TopUp(dto TopUpDTO, adminID int64) (*TopUpResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("top-up validation failed", "error", err, "admin_id", adminID)
		return nil, err
	}

	entry, err := s.repo.AppendTopUp(dto.Amount, dto.Description, adminID)
	if err != nil {
		s.logger.Error("failed to append top-up entry", "error", err, "admin_id", adminID)
		return nil, err
	}

	s.logger.Info("ledger topped up",
		"entry_id", entry.ID,
		"amount", entry.Amount,
		"new_balance", entry.Balance,
		"admin_id", adminID)

	return &TopUpResponse{EntryID: entry.ID, NewBalance: entry.Balance}, nil
}

// CurrentBalance returns the balance of the newest ledger entry, zero when
// the ledger is empty.
func (s *Service) CurrentBalance() (decimal.Decimal, error) {
	balance, err := s.repo.CurrentBalance()
	if err != nil {
		s.logger.Error("failed to read ledger balance", "error", err)
		return decimal.Zero, err
	}
	return balance, nil
}

// History lists ledger entries newest first.
func (s *Service) History(limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list ledger entries", "error", err)
		return nil, err
	}
	return entries, nil
}
