package category_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fieldserve/reimbursement/internal/category"
)

func TestCategoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Service Suite")
}

type mockCategoryRepository struct {
	byID   map[int64]*category.Category
	byName map[string]*category.Category
	nextID int64
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		byID:   make(map[int64]*category.Category),
		byName: make(map[string]*category.Category),
		nextID: 1,
	}
}

func (m *mockCategoryRepository) GetAll() ([]*category.Category, error) {
	result := make([]*category.Category, 0, len(m.byID))
	for _, c := range m.byID {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCategoryRepository) GetByID(id int64) (*category.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepository) GetByName(name string) (*category.Category, error) {
	c, ok := m.byName[name]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepository) Create(c *category.Category) error {
	c.ID = m.nextID
	m.nextID++
	m.byID[c.ID] = c
	m.byName[c.Name] = c
	return nil
}

func (m *mockCategoryRepository) Update(c *category.Category) error {
	m.byID[c.ID] = c
	m.byName[c.Name] = c
	return nil
}

func (m *mockCategoryRepository) Delete(id int64) error {
	if c, ok := m.byID[id]; ok {
		delete(m.byName, c.Name)
		delete(m.byID, id)
	}
	return nil
}

var _ = Describe("CategoryService", func() {
	var (
		service *category.Service
		repo    *mockCategoryRepository
	)

	BeforeEach(func() {
		repo = newMockCategoryRepository()
		service = category.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("CreateCategory", func() {
		It("should create an active category", func() {
			created, err := service.CreateCategory(category.CreateCategoryDTO{Name: "perjalanan"})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.IsActive).To(BeTrue())
		})

		It("should refuse a duplicate name", func() {
			_, err := service.CreateCategory(category.CreateCategoryDTO{Name: "perjalanan"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateCategory(category.CreateCategoryDTO{Name: "perjalanan"})
			Expect(err).To(MatchError(category.ErrDuplicateName))
		})

		It("should require a name", func() {
			_, err := service.CreateCategory(category.CreateCategoryDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAllCategories", func() {
		It("should hide inactive categories", func() {
			created, err := service.CreateCategory(category.CreateCategoryDTO{Name: "makan"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateCategory(category.CreateCategoryDTO{Name: "peralatan"})
			Expect(err).ToNot(HaveOccurred())

			inactive := false
			_, err = service.UpdateCategory(created.ID, category.UpdateCategoryDTO{IsActive: &inactive})
			Expect(err).ToNot(HaveOccurred())

			categories, err := service.GetAllCategories()
			Expect(err).ToNot(HaveOccurred())
			Expect(categories).To(HaveLen(1))
			Expect(categories[0].Name).To(Equal("peralatan"))
		})
	})

	Describe("UpdateCategory", func() {
		It("should return not found for a missing category", func() {
			_, err := service.UpdateCategory(99, category.UpdateCategoryDTO{Name: "x"})
			Expect(err).To(MatchError(category.ErrCategoryNotFound))
		})

		It("should refuse renaming onto an existing name", func() {
			_, err := service.CreateCategory(category.CreateCategoryDTO{Name: "makan"})
			Expect(err).ToNot(HaveOccurred())
			other, err := service.CreateCategory(category.CreateCategoryDTO{Name: "peralatan"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.UpdateCategory(other.ID, category.UpdateCategoryDTO{Name: "makan"})
			Expect(err).To(MatchError(category.ErrDuplicateName))
		})
	})

	Describe("DeleteCategory", func() {
		It("should delete an existing category", func() {
			created, err := service.CreateCategory(category.CreateCategoryDTO{Name: "makan"})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteCategory(created.ID)).To(Succeed())

			_, err = service.UpdateCategory(created.ID, category.UpdateCategoryDTO{Name: "x"})
			Expect(err).To(MatchError(category.ErrCategoryNotFound))
		})
	})
})
