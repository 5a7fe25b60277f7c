package payout_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal/expense"
	"github.com/fieldserve/reimbursement/internal/payout"
)

func TestPayoutService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payout Service Suite")
}

// Mock repository modelling the all-or-nothing payout transaction against an
// in-memory balance and claim set.
type mockPayoutRepository struct {
	approved    []payout.QueueClaim
	balance     decimal.Decimal
	paidClaims  []int64
	batches     int64
	listError   error
	payoutError error
}

func newMockPayoutRepository() *mockPayoutRepository {
	return &mockPayoutRepository{balance: decimal.Zero}
}

func (m *mockPayoutRepository) ApprovedClaims() ([]payout.QueueClaim, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.approved, nil
}

func (m *mockPayoutRepository) PerformPayout(technicianID, adminID int64) (*payout.Result, error) {
	if m.payoutError != nil {
		return nil, m.payoutError
	}

	total := decimal.Zero
	var ids []int64
	remaining := make([]payout.QueueClaim, 0, len(m.approved))
	for _, qc := range m.approved {
		if qc.Claim.UserID == technicianID {
			total = total.Add(qc.Claim.Amount)
			ids = append(ids, qc.Claim.ID)
		} else {
			remaining = append(remaining, qc)
		}
	}

	if len(ids) == 0 {
		return nil, payout.ErrNoOutstandingClaims
	}
	if m.balance.LessThan(total) {
		return nil, &payout.InsufficientFundsError{Balance: m.balance, Required: total}
	}

	m.batches++
	m.balance = m.balance.Sub(total)
	m.approved = remaining
	m.paidClaims = append(m.paidClaims, ids...)

	return &payout.Result{
		BatchID:    m.batches,
		Reference:  "batch-ref",
		TotalPaid:  total,
		ClaimCount: len(ids),
		NewBalance: m.balance,
	}, nil
}

func (m *mockPayoutRepository) OldestApprovedAt(technicianID int64) (*time.Time, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var oldest *time.Time
	for _, qc := range m.approved {
		if qc.Claim.UserID != technicianID {
			continue
		}
		at := qc.Claim.ApprovedAt
		if oldest == nil || at.Before(*oldest) {
			oldest = at
		}
	}
	return oldest, nil
}

func (m *mockPayoutRepository) CountApprovedBefore(t time.Time) (int64, error) {
	var count int64
	for _, qc := range m.approved {
		if qc.Claim.ApprovedAt.Before(t) {
			count++
		}
	}
	return count, nil
}

func approvedClaim(id, userID int64, amount int64, approvedAt time.Time, name string) payout.QueueClaim {
	return payout.QueueClaim{
		Claim: &expense.Claim{
			ID:         id,
			UserID:     userID,
			Amount:     decimal.NewFromInt(amount),
			Status:     expense.StatusApproved,
			ApprovedAt: &approvedAt,
		},
		TechnicianName: name,
	}
}

var _ = Describe("PayoutService", func() {
	var (
		service *payout.Service
		repo    *mockPayoutRepository
		base    time.Time
	)

	BeforeEach(func() {
		repo = newMockPayoutRepository()
		service = payout.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
		base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	})

	Describe("Queue", func() {
		It("should group claims per technician preserving approval order", func() {
			repo.approved = []payout.QueueClaim{
				approvedClaim(1, 10, 50000, base, "Budi"),
				approvedClaim(2, 11, 30000, base.Add(time.Minute), "Sari"),
				approvedClaim(3, 10, 20000, base.Add(2*time.Minute), "Budi"),
			}

			groups, err := service.Queue()

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].TechnicianID).To(Equal(int64(10)))
			Expect(groups[0].TotalAmount).To(Equal(decimal.NewFromInt(70000)))
			Expect(groups[0].Claims).To(HaveLen(2))
			Expect(groups[1].TechnicianID).To(Equal(int64(11)))
			Expect(groups[1].TotalAmount).To(Equal(decimal.NewFromInt(30000)))
		})

		It("should return an empty queue when nothing is approved", func() {
			groups, err := service.Queue()
			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(BeEmpty())
		})
	})

	Describe("PayoutTechnician", func() {
		It("should pay every approved claim of the technician and debit the ledger", func() {
			repo.balance = decimal.NewFromInt(100000)
			repo.approved = []payout.QueueClaim{
				approvedClaim(1, 10, 50000, base, "Budi"),
				approvedClaim(2, 10, 20000, base.Add(time.Minute), "Budi"),
				approvedClaim(3, 11, 30000, base.Add(2*time.Minute), "Sari"),
			}

			result, err := service.PayoutTechnician(10, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ClaimCount).To(Equal(2))
			Expect(result.TotalPaid).To(Equal(decimal.NewFromInt(70000)))
			Expect(result.NewBalance).To(Equal(decimal.NewFromInt(30000)))
			Expect(repo.paidClaims).To(ConsistOf(int64(1), int64(2)))

			groups, err := service.Queue()
			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(1))
			Expect(groups[0].TechnicianID).To(Equal(int64(11)))
		})

		It("should refuse the whole payout when funds do not cover the total", func() {
			repo.balance = decimal.NewFromInt(40000)
			repo.approved = []payout.QueueClaim{
				approvedClaim(1, 10, 50000, base, "Budi"),
			}

			_, err := service.PayoutTechnician(10, 1)

			var insufficient *payout.InsufficientFundsError
			Expect(errors.As(err, &insufficient)).To(BeTrue())
			Expect(insufficient.Shortfall()).To(Equal(decimal.NewFromInt(10000)))

			// nothing paid, nothing debited
			Expect(repo.paidClaims).To(BeEmpty())
			Expect(repo.balance).To(Equal(decimal.NewFromInt(40000)))
			groups, _ := service.Queue()
			Expect(groups).To(HaveLen(1))
		})

		It("should report when the technician has nothing outstanding", func() {
			repo.balance = decimal.NewFromInt(100000)
			_, err := service.PayoutTechnician(10, 1)
			Expect(err).To(MatchError(payout.ErrNoOutstandingClaims))
		})

		It("should surface a failed transaction without a result", func() {
			repo.payoutError = errors.New("deadlock detected")
			result, err := service.PayoutTechnician(10, 1)
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("QueuePosition", func() {
		It("should rank by the oldest approved claim across all technicians", func() {
			repo.approved = []payout.QueueClaim{
				approvedClaim(1, 10, 50000, base, "Budi"),
				approvedClaim(2, 11, 30000, base.Add(time.Minute), "Sari"),
				approvedClaim(3, 11, 10000, base.Add(2*time.Minute), "Sari"),
			}

			pos, err := service.QueuePosition(11)
			Expect(err).ToNot(HaveOccurred())
			Expect(pos).To(Equal(int64(2)))

			pos, err = service.QueuePosition(10)
			Expect(err).ToNot(HaveOccurred())
			Expect(pos).To(Equal(int64(1)))
		})

		It("should be zero for a technician with no approved claims", func() {
			pos, err := service.QueuePosition(10)
			Expect(err).ToNot(HaveOccurred())
			Expect(pos).To(BeZero())
		})

		It("should advance after the technician ahead is paid out", func() {
			repo.balance = decimal.NewFromInt(100000)
			repo.approved = []payout.QueueClaim{
				approvedClaim(1, 10, 50000, base, "Budi"),
				approvedClaim(2, 11, 30000, base.Add(time.Minute), "Sari"),
			}

			_, err := service.PayoutTechnician(10, 1)
			Expect(err).ToNot(HaveOccurred())

			pos, err := service.QueuePosition(11)
			Expect(err).ToNot(HaveOccurred())
			Expect(pos).To(Equal(int64(1)))
		})
	})

	Describe("Consolidate", func() {
		It("should never materialize an empty group", func() {
			groups := payout.Consolidate(nil)
			Expect(groups).To(BeEmpty())
		})

		It("should sum exact decimal amounts", func() {
			a, _ := decimal.NewFromString("0.10")
			b, _ := decimal.NewFromString("0.20")
			at := time.Now()
			claims := []payout.QueueClaim{
				{Claim: &expense.Claim{ID: 1, UserID: 10, Amount: a, ApprovedAt: &at}, TechnicianName: "Budi"},
				{Claim: &expense.Claim{ID: 2, UserID: 10, Amount: b, ApprovedAt: &at}, TechnicianName: "Budi"},
			}

			groups := payout.Consolidate(claims)

			expected, _ := decimal.NewFromString("0.30")
			Expect(groups).To(HaveLen(1))
			Expect(groups[0].TotalAmount.Equal(expected)).To(BeTrue())
		})
	})
})
