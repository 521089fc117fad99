package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"focuscoach/internal/model"
	"focuscoach/internal/repository"
)

// EventService owns the client-visible plan list: adding, toggling,
// soft-deleting and restoring events. Completing or adding an event marks
// its category active for the flame dashboard.
type EventService struct {
	events     *repository.EventRepository
	categories *repository.CategoryRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewEventService(events *repository.EventRepository, categories *repository.CategoryRepository, log *zap.Logger) *EventService {
	return &EventService{
		events:     events,
		categories: categories,
		log:        log,
		now:        time.Now,
	}
}

// AddEventInput carries the client-supplied fields of a new event.
type AddEventInput struct {
	Title           string
	Time            string // local "HH:MM"
	Category        string
	Description     string
	Date            string // "YYYY-MM-DD", defaults to today
	ReminderMinutes int
}

// Add creates a new event with a server-generated id and marks its category
// active.
func (s *EventService) Add(ctx context.Context, userID string, input AddEventInput) (*model.PlanEvent, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title required")
	}
	now := s.now()
	if input.Date == "" {
		input.Date = now.Format("2006-01-02")
	}

	event := &model.PlanEvent{
		ID:              newEventID(now),
		UserID:          userID,
		Title:           input.Title,
		Time:            input.Time,
		Category:        model.NormalizeCategory(input.Category),
		Description:     input.Description,
		Date:            input.Date,
		ReminderMinutes: input.ReminderMinutes,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.markActive(ctx, event.Category, now)
	return event, nil
}

// Toggle flips the completed flag. Flipping to completed counts as category
// activity; unchecking does not rewind lastActive.
func (s *EventService) Toggle(ctx context.Context, userID, eventID string) (*model.PlanEvent, error) {
	event, err := s.events.FindByID(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.events.SetCompleted(ctx, event, !event.Completed); err != nil {
		return nil, err
	}
	if event.Completed {
		s.markActive(ctx, event.Category, s.now())
	}
	return event, nil
}

// Delete moves the event to the soft-deleted list.
func (s *EventService) Delete(ctx context.Context, userID, eventID string) (*model.DeletedEvent, error) {
	return s.events.SoftDelete(ctx, userID, eventID, s.now())
}

// Restore brings a soft-deleted event back unchanged.
func (s *EventService) Restore(ctx context.Context, userID, eventID string) (*model.PlanEvent, error) {
	return s.events.Restore(ctx, userID, eventID)
}

// List returns the user's active events, optionally for one date.
func (s *EventService) List(ctx context.Context, userID, date string) ([]model.PlanEvent, error) {
	return s.events.List(ctx, userID, date)
}

// ListDeleted returns the soft-deleted events, newest deletion first.
func (s *EventService) ListDeleted(ctx context.Context, userID string) ([]model.DeletedEvent, error) {
	return s.events.ListDeleted(ctx, userID)
}

// markActive records category activity. A failure here never fails the
// triggering mutation.
func (s *EventService) markActive(ctx context.Context, category string, at time.Time) {
	if err := s.categories.MarkActive(ctx, []string{category}, at); err != nil {
		s.log.Warn("mark category active", zap.String("category", category), zap.Error(err))
	}
}

// newEventID builds a unique id that still sorts roughly by creation time.
func newEventID(now time.Time) string {
	return fmt.Sprintf("event-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
