package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

type TopUpDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (dto TopUpDTO) Validate() error {
	if dto.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTopUpAmount
	}
	if len(dto.Description) > 255 {
		return errors.New("description must be less than 255 characters")
	}
	return nil
}

type TopUpResponse struct {
	EntryID    int64           `json:"entry_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Domain errors
var (
	ErrInvalidTopUpAmount = errors.New("top-up amount must be greater than zero")
)
