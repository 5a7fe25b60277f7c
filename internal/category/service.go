package category

import (
	"log/slog"
)

type RepositoryAPI interface {
	GetAll() ([]*Category, error)
	GetByID(id int64) (*Category, error)
	GetByName(name string) (*Category, error)
	Create(category *Category) error
	Update(category *Category) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories() ([]*Category, error) {
	categories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories", "error", err)
		return nil, err
	}

	active := make([]*Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) CreateCategory(dto CreateCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, ErrDuplicateName
	}

	category := &Category{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(category); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *Service) UpdateCategory(id int64, dto UpdateCategoryDTO) (*Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	if dto.Name != "" && dto.Name != category.Name {
		if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
			return nil, ErrDuplicateName
		}
		category.Name = dto.Name
	}
	if dto.Description != "" {
		category.Description = dto.Description
	}
	if dto.IsActive != nil {
		category.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(category); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}
	return category, nil
}

func (s *Service) DeleteCategory(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrCategoryNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}
	s.logger.Info("category deleted", "category_id", id)
	return nil
}
