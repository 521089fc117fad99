package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"focuscoach/internal/flame"
	"focuscoach/internal/model"
	"focuscoach/internal/repository"
)

// CategoryFlame is the dashboard view of one category.
type CategoryFlame struct {
	Category model.Category `json:"category"`
	State    flame.State    `json:"state"`
	Percent  int            `json:"percent"`
}

// FlameSnapshot is the full dashboard state at one instant.
type FlameSnapshot struct {
	Flames        []CategoryFlame `json:"flames"`
	MasterPercent int             `json:"masterPercent"`
}

// FlameService computes the dashboard from stored category activity. Nothing
// is persisted; every snapshot is derived fresh.
type FlameService struct {
	categories *repository.CategoryRepository
	events     *repository.EventRepository
	graceHours int
	log        *zap.Logger
}

func NewFlameService(categories *repository.CategoryRepository, events *repository.EventRepository, graceHours int, log *zap.Logger) *FlameService {
	return &FlameService{
		categories: categories,
		events:     events,
		graceHours: graceHours,
		log:        log,
	}
}

// Snapshot classifies every category and computes the master percent, the
// share of categories still burning. now carries the user's local time.
func (s *FlameService) Snapshot(ctx context.Context, userID string, now time.Time) (*FlameSnapshot, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	today := now.Format("2006-01-02")
	flames := make([]CategoryFlame, 0, len(categories))
	burning := 0
	for _, cat := range categories {
		state := flame.StateAt(cat.LastActiveAt, s.graceHours, now)
		if state.Burning() {
			burning++
		}

		percent := 0
		if state == flame.StateActive {
			completed, err := s.events.CountCompleted(ctx, userID, cat.ID, today)
			if err != nil {
				s.log.Warn("count completed", zap.String("category", cat.ID), zap.Error(err))
			}
			percent = flame.IntensityPercent(cat.ID, flame.HoursToday(completed))
			if percent == 0 {
				// Active via plan generation or an uncompleted add still
				// shows the base glow.
				percent = 40
			}
		}

		flames = append(flames, CategoryFlame{Category: cat, State: state, Percent: percent})
	}

	master := 0
	if len(flames) > 0 {
		master = int(math.Round(float64(burning) / float64(len(flames)) * 100))
	}

	return &FlameSnapshot{Flames: flames, MasterPercent: master}, nil
}
