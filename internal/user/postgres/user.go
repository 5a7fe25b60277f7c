package postgres

import (
	"gorm.io/gorm"

	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
	"github.com/fieldserve/reimbursement/internal/user"
)

// UserRepository implements the user.RepositoryAPI interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var rows []*userDatamodel.User
	if err := r.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*user.User, len(rows))
	for i, row := range rows {
		result[i] = user.FromDataModel(row)
	}
	return result, nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Create(u *user.User) error {
	row := user.ToDataModel(u)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	*u = *user.FromDataModel(row)
	return nil
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Save(user.ToDataModel(u)).Error
}
