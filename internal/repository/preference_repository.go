package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focuscoach/internal/model"
)

// PreferenceRepository stores per-user reminder preferences.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Upsert creates or replaces the preference record for pref.UserID.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *model.Preference) error {
	db := r.db.WithContext(ctx)

	var existing model.Preference
	err := db.First(&existing, "user_id = ?", pref.UserID).Error
	switch {
	case err == nil:
		existing.WishText = pref.WishText
		existing.Times = pref.Times
		existing.TZ = pref.TZ
		if err := db.Save(&existing).Error; err != nil {
			return fmt.Errorf("update preference: %w", err)
		}
		*pref = existing
		return nil
	case err == gorm.ErrRecordNotFound:
		if err := db.Create(pref).Error; err != nil {
			return fmt.Errorf("create preference: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find preference: %w", err)
	}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*model.Preference, error) {
	var pref model.Preference
	if err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *PreferenceRepository) ListAll(ctx context.Context) ([]model.Preference, error) {
	var prefs []model.Preference
	if err := r.db.WithContext(ctx).Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
