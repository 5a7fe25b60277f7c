package postgres

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	expenseDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/expense"
	ledgerDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/ledger"
	payoutDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/payout"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
	"github.com/fieldserve/reimbursement/internal/expense"
	ledgerPostgres "github.com/fieldserve/reimbursement/internal/ledger/postgres"
	"github.com/fieldserve/reimbursement/internal/payout"
)

func TestPayoutRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PayoutRepository Suite")
}

var _ = Describe("PayoutRepository", func() {
	var (
		db    *gorm.DB
		repo  payout.Repository
		admin *userDatamodel.User
		budi  *userDatamodel.User
		sari  *userDatamodel.User
	)

	topUp := func(amount int64) {
		_, err := ledgerPostgres.NewLedgerRepository(db).AppendTopUp(decimal.NewFromInt(amount), "float", admin.ID)
		Expect(err).NotTo(HaveOccurred())
	}

	approvedClaim := func(userID, amount int64, approvedAt time.Time) *expenseDatamodel.Expense {
		row := &expenseDatamodel.Expense{
			UserID:       userID,
			CategoryID:   1,
			Amount:       decimal.NewFromInt(amount),
			Description:  "site visit",
			Status:       expense.StatusApproved,
			ExpenseDate:  approvedAt.AddDate(0, 0, -1),
			ApprovedAt:   &approvedAt,
			ApprovedByID: &admin.ID,
		}
		Expect(db.Create(row).Error).NotTo(HaveOccurred())
		return row
	}

	reload := func(id int64) *expenseDatamodel.Expense {
		var row expenseDatamodel.Expense
		Expect(db.First(&row, id).Error).NotTo(HaveOccurred())
		return &row
	}

	countRows := func(model interface{}) int64 {
		var count int64
		Expect(db.Model(model).Count(&count).Error).NotTo(HaveOccurred())
		return count
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&userDatamodel.User{},
			&expenseDatamodel.Expense{},
			&expenseDatamodel.Attachment{},
			&payoutDatamodel.Batch{},
			&ledgerDatamodel.Entry{},
		)
		Expect(err).NotTo(HaveOccurred())

		admin = &userDatamodel.User{Name: "Ops Admin", Email: "ops@mail.com", PasswordHash: "x", Role: userDatamodel.RoleAdmin, IsActive: true}
		budi = &userDatamodel.User{Name: "Budi", Email: "budi@mail.com", PasswordHash: "x", Role: userDatamodel.RoleTechnician, IsActive: true}
		sari = &userDatamodel.User{Name: "Sari", Email: "sari@mail.com", PasswordHash: "x", Role: userDatamodel.RoleTechnician, IsActive: true}
		for _, u := range []*userDatamodel.User{admin, budi, sari} {
			Expect(db.Create(u).Error).NotTo(HaveOccurred())
		}

		repo = NewPayoutRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("PerformPayout", func() {
		It("should pay the claim, debit the ledger and record the batch", func() {
			topUp(1000000)
			claim := approvedClaim(budi.ID, 400000, time.Now().UTC())

			result, err := repo.PerformPayout(budi.ID, admin.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ClaimCount).To(Equal(1))
			Expect(result.TotalPaid.Equal(decimal.NewFromInt(400000))).To(BeTrue())
			Expect(result.NewBalance.Equal(decimal.NewFromInt(600000))).To(BeTrue())

			row := reload(claim.ID)
			Expect(row.Status).To(Equal(expense.StatusPaid))
			Expect(row.PaidAt).NotTo(BeNil())
			Expect(row.PayoutBatchID).To(HaveValue(Equal(result.BatchID)))

			var batch payoutDatamodel.Batch
			Expect(db.First(&batch, result.BatchID).Error).NotTo(HaveOccurred())
			Expect(batch.Reference).To(Equal(result.Reference))
			Expect(batch.TechnicianID).To(Equal(budi.ID))
			Expect(batch.TotalAmount.Equal(decimal.NewFromInt(400000))).To(BeTrue())

			var tail ledgerDatamodel.Entry
			Expect(db.Order("id DESC").First(&tail).Error).NotTo(HaveOccurred())
			Expect(tail.Type).To(Equal(ledgerDatamodel.EntryTypeDisbursement))
			Expect(tail.Balance.Equal(decimal.NewFromInt(600000))).To(BeTrue())
			Expect(tail.PayoutBatchID).To(HaveValue(Equal(result.BatchID)))
		})

		It("should consolidate every approved claim of the technician and only theirs", func() {
			topUp(1000000)
			base := time.Now().UTC()
			first := approvedClaim(budi.ID, 250000, base)
			second := approvedClaim(budi.ID, 150000, base.Add(time.Minute))
			other := approvedClaim(sari.ID, 90000, base.Add(2*time.Minute))

			result, err := repo.PerformPayout(budi.ID, admin.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ClaimCount).To(Equal(2))
			Expect(result.TotalPaid.Equal(decimal.NewFromInt(400000))).To(BeTrue())
			Expect(reload(first.ID).Status).To(Equal(expense.StatusPaid))
			Expect(reload(second.ID).Status).To(Equal(expense.StatusPaid))
			Expect(reload(other.ID).Status).To(Equal(expense.StatusApproved))
		})

		It("should refuse the whole payout and change nothing when funds fall short", func() {
			topUp(300000)
			claim := approvedClaim(budi.ID, 350000, time.Now().UTC())

			_, err := repo.PerformPayout(budi.ID, admin.ID)

			var insufficient *payout.InsufficientFundsError
			Expect(errors.As(err, &insufficient)).To(BeTrue())
			Expect(insufficient.Balance.Equal(decimal.NewFromInt(300000))).To(BeTrue())
			Expect(insufficient.Required.Equal(decimal.NewFromInt(350000))).To(BeTrue())

			Expect(reload(claim.ID).Status).To(Equal(expense.StatusApproved))
			Expect(countRows(&payoutDatamodel.Batch{})).To(BeZero())
			Expect(countRows(&ledgerDatamodel.Entry{})).To(Equal(int64(1)))
		})

		It("should report when the technician has nothing outstanding", func() {
			topUp(1000000)
			_, err := repo.PerformPayout(budi.ID, admin.ID)
			Expect(err).To(MatchError(payout.ErrNoOutstandingClaims))
		})

		It("should roll back the batch and claim updates when a later write fails", func() {
			topUp(1000000)
			claim := approvedClaim(budi.ID, 400000, time.Now().UTC())

			// fail the ledger append, after the batch row is already written
			err := db.Callback().Create().Before("gorm:create").Register("fail_disbursement", func(tx *gorm.DB) {
				if entry, ok := tx.Statement.Dest.(*ledgerDatamodel.Entry); ok && entry.Type == ledgerDatamodel.EntryTypeDisbursement {
					tx.AddError(errors.New("write failed"))
				}
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := repo.PerformPayout(budi.ID, admin.ID)

			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(reload(claim.ID).Status).To(Equal(expense.StatusApproved))
			Expect(reload(claim.ID).PayoutBatchID).To(BeNil())
			Expect(countRows(&payoutDatamodel.Batch{})).To(BeZero())
			Expect(countRows(&ledgerDatamodel.Entry{})).To(Equal(int64(1)))

			balance, err := ledgerPostgres.TailBalance(db)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.Equal(decimal.NewFromInt(1000000))).To(BeTrue())
		})
	})

	Describe("ApprovedClaims", func() {
		It("should order by approval time with technician names attached", func() {
			base := time.Now().UTC()
			approvedClaim(sari.ID, 90000, base)
			approvedClaim(budi.ID, 250000, base.Add(time.Minute))

			claims, err := repo.ApprovedClaims()

			Expect(err).NotTo(HaveOccurred())
			Expect(claims).To(HaveLen(2))
			Expect(claims[0].TechnicianName).To(Equal("Sari"))
			Expect(claims[1].TechnicianName).To(Equal("Budi"))
		})
	})

	Describe("queue position queries", func() {
		It("should count only claims approved strictly earlier", func() {
			base := time.Now().UTC()
			approvedClaim(budi.ID, 250000, base)
			approvedClaim(sari.ID, 90000, base.Add(time.Minute))

			oldest, err := repo.OldestApprovedAt(sari.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(oldest).NotTo(BeNil())

			ahead, err := repo.CountApprovedBefore(*oldest)
			Expect(err).NotTo(HaveOccurred())
			Expect(ahead).To(Equal(int64(1)))
		})

		It("should return nil for a technician with no approved claims", func() {
			oldest, err := repo.OldestApprovedAt(budi.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(oldest).To(BeNil())
		})
	})
})
