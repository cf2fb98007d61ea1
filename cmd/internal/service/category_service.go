package service

import (
	"amigella/cmd/internal/domain/entity"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/labstack/gommon/log"
)

type CategoryRepository interface {
	FindByUserID(userID int) ([]*entity.Category, error)
	SaveAll(cats []*entity.Category) error
}

type CategoryResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Emoji     string `json:"emoji"`
	IsDefault bool   `json:"is_default"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

type DefaultCategoryService struct {
	CategoryRepo CategoryRepository
}

func NewCategoryService(catRepo CategoryRepository) *DefaultCategoryService {
	return &DefaultCategoryService{CategoryRepo: catRepo}
}

func (c *DefaultCategoryService) GetCategories(userID int) ([]*CategoryResponse, apierror.ErrorResponse) {
	cats, err := c.CategoryRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch categories for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*CategoryResponse, len(cats))
	for i, cat := range cats {
		resp[i] = &CategoryResponse{
			ID:        cat.ID,
			Name:      cat.Name,
			Color:     cat.Color,
			Emoji:     cat.Emoji,
			IsDefault: cat.IsDefault,
			Priority:  cat.Priority,
			CreatedAt: utils.FormatEpoch(cat.CreatedAt),
		}
	}
	return resp, nil
}
