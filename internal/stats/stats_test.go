package stats_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/fieldserve/reimbursement/internal"
	"github.com/fieldserve/reimbursement/internal/expense"
	"github.com/fieldserve/reimbursement/internal/stats"
)

func TestStatsService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stats Service Suite")
}

type sumKey struct {
	userID int64
	status string
	month  string
}

type mockStatsRepository struct {
	sums     map[sumKey]decimal.Decimal
	sumError error
}

func (m *mockStatsRepository) SumByStatus(userID int64, status string, month string) (decimal.Decimal, error) {
	if m.sumError != nil {
		return decimal.Zero, m.sumError
	}
	return m.sums[sumKey{userID, status, month}], nil
}

type mockQueue struct {
	positions map[int64]int64
	err       error
}

func (m *mockQueue) QueuePosition(technicianID int64) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.positions[technicianID], nil
}

var _ = Describe("StatsService", func() {
	var (
		service *stats.Service
		repo    *mockStatsRepository
		queue   *mockQueue
	)

	BeforeEach(func() {
		repo = &mockStatsRepository{sums: make(map[sumKey]decimal.Decimal)}
		queue = &mockQueue{positions: make(map[int64]int64)}
		service = stats.NewService(repo, queue, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("ForTechnician", func() {
		It("should report amounts per status and the queue position", func() {
			repo.sums[sumKey{10, expense.StatusPending, ""}] = decimal.NewFromInt(25000)
			repo.sums[sumKey{10, expense.StatusApproved, ""}] = decimal.NewFromInt(70000)
			repo.sums[sumKey{10, expense.StatusPaid, ""}] = decimal.NewFromInt(130000)
			queue.positions[10] = 2

			result, err := service.ForTechnician(10, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Pending).To(Equal(decimal.NewFromInt(25000)))
			Expect(result.Approved).To(Equal(decimal.NewFromInt(70000)))
			Expect(result.Paid).To(Equal(decimal.NewFromInt(130000)))
			Expect(result.QueuePosition).To(Equal(int64(2)))
		})

		It("should pass the month filter to the sums but never to the queue", func() {
			repo.sums[sumKey{10, expense.StatusPaid, "2025-01"}] = decimal.NewFromInt(40000)
			repo.sums[sumKey{10, expense.StatusPaid, ""}] = decimal.NewFromInt(130000)
			queue.positions[10] = 1

			result, err := service.ForTechnician(10, "2025-01")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Paid).To(Equal(decimal.NewFromInt(40000)))
			Expect(result.QueuePosition).To(Equal(int64(1)))
		})

		It("should be all zeros for a technician without claims", func() {
			result, err := service.ForTechnician(99, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Pending.IsZero()).To(BeTrue())
			Expect(result.Approved.IsZero()).To(BeTrue())
			Expect(result.Paid.IsZero()).To(BeTrue())
			Expect(result.QueuePosition).To(BeZero())
		})

		It("should reject a malformed month filter before querying", func() {
			repo.sumError = errors.New("must not be reached")

			_, err := service.ForTechnician(10, "garbage")

			Expect(err).To(HaveOccurred())
			_, isAppError := internal.IsAppError(err)
			Expect(isAppError).To(BeTrue())
		})

		It("should surface aggregation failures", func() {
			repo.sumError = errors.New("query timeout")
			_, err := service.ForTechnician(10, "")
			Expect(err).To(HaveOccurred())
		})
	})
})
