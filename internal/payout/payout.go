package payout

import (
	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal/expense"
)

// QueueClaim is an approved claim together with its owner's display name,
// as fetched for the consolidation view.
type QueueClaim struct {
	Claim          *expense.Claim
	TechnicianName string
}

// QueueGroup is one technician's consolidated position in the payout queue:
// every approved claim they are owed, with the exact total.
type QueueGroup struct {
	TechnicianID   int64            `json:"technician_id"`
	TechnicianName string           `json:"technician_name"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Claims         []*expense.Claim `json:"claims"`
}

// Consolidate groups approved claims by technician. Input must already be
// ordered by approved_at ascending; groups come out in the order of each
// technician's oldest claim, which is the FIFO precedence an operator
// working top to bottom would follow. Technicians with no approved claims
// never materialize a group.
func Consolidate(claims []QueueClaim) []*QueueGroup {
	groups := make([]*QueueGroup, 0)
	byTechnician := make(map[int64]*QueueGroup)

	for _, qc := range claims {
		g, ok := byTechnician[qc.Claim.UserID]
		if !ok {
			g = &QueueGroup{
				TechnicianID:   qc.Claim.UserID,
				TechnicianName: qc.TechnicianName,
				TotalAmount:    decimal.Zero,
				Claims:         make([]*expense.Claim, 0, 1),
			}
			byTechnician[qc.Claim.UserID] = g
			groups = append(groups, g)
		}
		g.TotalAmount = g.TotalAmount.Add(qc.Claim.Amount)
		g.Claims = append(g.Claims, qc.Claim)
	}

	return groups
}
