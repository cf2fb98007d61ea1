package repository

import (
	"errors"
	"strings"

	"amigella/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *DefaultCategoryRepository {
	return &DefaultCategoryRepository{db: db}
}

func (c *DefaultCategoryRepository) FindByUserID(userID int) ([]*entity.Category, error) {
	var cats []*entity.Category
	err := c.db.Where("user_id = ?", userID).
		Order("is_default desc").
		Order("priority desc").
		Find(&cats).Error
	return cats, err
}

// FindByUserAndName matches a category by case-insensitive partial name,
// the way a spoken "rad" should land on the user's "Rad" category.
func (c *DefaultCategoryRepository) FindByUserAndName(userID int, name string) (*entity.Category, error) {
	var cat entity.Category
	err := c.db.Where("user_id = ?", userID).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cat, err
}

func (c *DefaultCategoryRepository) SaveAll(cats []*entity.Category) error {
	return c.db.Create(&cats).Error
}
