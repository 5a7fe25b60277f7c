package postgres

import (
	"gorm.io/gorm"

	"github.com/fieldserve/reimbursement/internal/category"
	categoryDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/category"
)

// CategoryRepository implements the category.RepositoryAPI interface using GORM.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll() ([]*category.Category, error) {
	var rows []*categoryDatamodel.Category
	if err := r.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*category.Category, len(rows))
	for i, row := range rows {
		result[i] = category.FromDataModel(row)
	}
	return result, nil
}

func (r *CategoryRepository) GetByID(id int64) (*category.Category, error) {
	var row categoryDatamodel.Category
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, category.ErrCategoryNotFound
		}
		return nil, err
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) GetByName(name string) (*category.Category, error) {
	var row categoryDatamodel.Category
	err := r.db.Where("name = ?", name).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, category.ErrCategoryNotFound
		}
		return nil, err
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) Create(c *category.Category) error {
	row := category.ToDataModel(c)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	*c = *category.FromDataModel(row)
	return nil
}

func (r *CategoryRepository) Update(c *category.Category) error {
	return r.db.Save(category.ToDataModel(c)).Error
}

func (r *CategoryRepository) Delete(id int64) error {
	return r.db.Delete(&categoryDatamodel.Category{}, id).Error
}
