package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"focuscoach/internal/flame"
	"focuscoach/internal/repository"
)

func newTestFlameService(t *testing.T) (*FlameService, *EventService, *repository.CategoryRepository) {
	t.Helper()
	db := newTestDB(t)
	categories := repository.NewCategoryRepository(db)
	require.NoError(t, categories.EnsureDefaults(context.Background()))
	events := repository.NewEventRepository(db)
	return NewFlameService(categories, events, 10, zap.NewNop()),
		NewEventService(events, categories, zap.NewNop()),
		categories
}

func TestFlameService_AllOffWithoutActivity(t *testing.T) {
	svc, _, _ := newTestFlameService(t)

	snap, err := svc.Snapshot(context.Background(), "user-1", time.Now())
	require.NoError(t, err)

	require.Len(t, snap.Flames, 11)
	for _, f := range snap.Flames {
		assert.Equal(t, flame.StateOff, f.State)
		assert.Equal(t, 0, f.Percent)
	}
	assert.Equal(t, 0, snap.MasterPercent)
}

func TestFlameService_CompletedEventsRaiseIntensity(t *testing.T) {
	svc, events, _ := newTestFlameService(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		ev, err := events.Add(ctx, "user-1", AddEventInput{Title: "Workout", Category: "fitness", Date: now.Format("2006-01-02")})
		require.NoError(t, err)
		_, err = events.Toggle(ctx, "user-1", ev.ID)
		require.NoError(t, err)
	}

	snap, err := svc.Snapshot(ctx, "user-1", now)
	require.NoError(t, err)

	var fitness CategoryFlame
	for _, f := range snap.Flames {
		if f.Category.ID == "fitness" {
			fitness = f
		}
	}
	assert.Equal(t, flame.StateActive, fitness.State)
	// 3 completed events assume 3 hours, the top fitness threshold.
	assert.Equal(t, 100, fitness.Percent)

	// 1 of 11 categories burning.
	assert.Equal(t, 9, snap.MasterPercent)
}

func TestFlameService_ActivityYesterdayIsGraceWithZeroPercent(t *testing.T) {
	svc, _, categories := newTestFlameService(t)
	ctx := context.Background()
	now := time.Now()

	yesterday := now.Add(-24 * time.Hour)
	require.NoError(t, categories.MarkActive(ctx, []string{"mind"}, yesterday))

	snap, err := svc.Snapshot(ctx, "user-1", now)
	require.NoError(t, err)

	for _, f := range snap.Flames {
		if f.Category.ID == "mind" {
			assert.Equal(t, flame.StateGrace, f.State)
			assert.Equal(t, 0, f.Percent)
		}
	}
	// Grace still counts toward the master percent.
	assert.Equal(t, 9, snap.MasterPercent)
}

func TestFlameService_ActiveWithoutCompletionsShowsBaseGlow(t *testing.T) {
	svc, _, categories := newTestFlameService(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, categories.MarkActive(ctx, []string{"work"}, now))

	snap, err := svc.Snapshot(ctx, "user-1", now)
	require.NoError(t, err)

	for _, f := range snap.Flames {
		if f.Category.ID == "work" {
			assert.Equal(t, flame.StateActive, f.State)
			assert.Equal(t, 40, f.Percent)
		}
	}
}
