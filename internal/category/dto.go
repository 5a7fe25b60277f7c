package category

import (
	"errors"

	"github.com/fieldserve/reimbursement/internal"
)

type CreateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto CreateCategoryDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 100 {
		return internal.NewValidationError("name must be less than 100 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Domain errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateName    = errors.New("category name already exists")
)
