package postgres

import (
	"gorm.io/gorm"

	"github.com/fieldserve/reimbursement/internal/auth"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
)

// AuthRepository implements the auth.Repository interface using GORM.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *AuthRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
