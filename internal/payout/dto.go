package payout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Result reports a committed payout transaction.
type Result struct {
	BatchID    int64           `json:"batch_id"`
	Reference  string          `json:"reference"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	ClaimCount int             `json:"claim_count"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// InsufficientFundsError reports the shortfall so the admin can decide how
// much to top up before retrying.
type InsufficientFundsError struct {
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: payout requires %s but balance is %s (short %s)",
		e.Required.StringFixed(2), e.Balance.StringFixed(2), e.Shortfall().StringFixed(2))
}

func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Balance)
}

// Domain errors
var (
	ErrNoOutstandingClaims = errors.New("technician has no approved claims awaiting payout")
)
