package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"focuscoach/internal/model"
)

// EventRepository handles CRUD for plan events, including the soft-delete
// list. Deleting moves the row into deleted_events; restoring moves it
// back. There is no purge.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.PlanEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) CreateBatch(ctx context.Context, events []model.PlanEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("create events: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, userID, eventID string) (*model.PlanEvent, error) {
	var event model.PlanEvent
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, eventID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns active events for a user, optionally filtered by date,
// ordered by time of day.
func (r *EventRepository) List(ctx context.Context, userID, date string) ([]model.PlanEvent, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var events []model.PlanEvent
	if err := q.Order("time ASC, created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// SetCompleted flips the completed flag to the given value.
func (r *EventRepository) SetCompleted(ctx context.Context, event *model.PlanEvent, completed bool) error {
	event.Completed = completed
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("toggle event: %w", err)
	}
	return nil
}

// SoftDelete moves an event into the deleted list in one transaction.
func (r *EventRepository) SoftDelete(ctx context.Context, userID, eventID string, deletedAt time.Time) (*model.DeletedEvent, error) {
	var deleted model.DeletedEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.PlanEvent
		if err := tx.Where("user_id = ? AND id = ?", userID, eventID).First(&event).Error; err != nil {
			return err
		}
		deleted = model.NewDeletedEvent(event, deletedAt)
		if err := tx.Create(&deleted).Error; err != nil {
			return fmt.Errorf("record deleted event: %w", err)
		}
		if err := tx.Delete(&model.PlanEvent{}, "id = ?", event.ID).Error; err != nil {
			return fmt.Errorf("remove event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// Restore moves a soft-deleted event back into the active list.
func (r *EventRepository) Restore(ctx context.Context, userID, eventID string) (*model.PlanEvent, error) {
	var restored model.PlanEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deleted model.DeletedEvent
		if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).First(&deleted).Error; err != nil {
			return err
		}
		restored = deleted.Event()
		if err := tx.Create(&restored).Error; err != nil {
			return fmt.Errorf("restore event: %w", err)
		}
		if err := tx.Delete(&model.DeletedEvent{}, "id = ?", deleted.ID).Error; err != nil {
			return fmt.Errorf("remove deleted record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// ListDeleted returns soft-deleted events, newest deletion first.
func (r *EventRepository) ListDeleted(ctx context.Context, userID string) ([]model.DeletedEvent, error) {
	var deleted []model.DeletedEvent
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("deleted_at DESC").Find(&deleted).Error; err != nil {
		return nil, err
	}
	return deleted, nil
}

// CountCompleted counts completed events for a user, category and date.
// Feeds the flame intensity heuristic.
func (r *EventRepository) CountCompleted(ctx context.Context, userID, category, date string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.PlanEvent{}).
		Where("user_id = ? AND category = ? AND date = ? AND completed = ?", userID, category, date, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
