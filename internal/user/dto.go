package user

import (
	"errors"
	"strings"

	"github.com/fieldserve/reimbursement/internal"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
)

type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	switch dto.Role {
	case userDatamodel.RoleAdmin, userDatamodel.RoleTechnician:
	default:
		return internal.NewValidationError("role must be ADMIN or TECHNICIAN", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateUserDTO struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Domain errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
