package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"focuscoach/internal/model"
)

// CategoryRepository manages flame categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// EnsureDefaults inserts any category from the closed enum that is not yet
// stored. Existing rows (and their lastActive timestamps) are untouched.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for _, cat := range model.DefaultCategories {
		var existing model.Category
		err := db.First(&existing, "id = ?", cat.ID).Error
		switch {
		case err == nil:
			continue
		case err == gorm.ErrRecordNotFound:
			if err := db.Create(&cat).Error; err != nil {
				return fmt.Errorf("create category %s: %w", cat.ID, err)
			}
		default:
			return fmt.Errorf("find category %s: %w", cat.ID, err)
		}
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// MarkActive sets lastActive for the given category ids. Unknown ids are
// ignored; activity on them was already coerced to "other" upstream.
func (r *CategoryRepository) MarkActive(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id IN ?", ids).
		Update("last_active_at", at).Error; err != nil {
		return fmt.Errorf("mark categories active: %w", err)
	}
	return nil
}
