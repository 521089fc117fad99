// Package store persists the most recent generated plan per user in a
// disk-backed key-value store. It replaces the in-memory plan map of the
// reference setup so the ICS export survives restarts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"focuscoach/internal/model"
)

// ErrNotFound is returned when no plan is stored for a user.
var ErrNotFound = errors.New("plan not found")

// PlanStore keeps one NextDayPlan snapshot per user.
type PlanStore interface {
	Save(userID string, plan *model.NextDayPlan) error
	Get(userID string) (*model.NextDayPlan, error)
}

type planStore struct {
	d *diskv.Diskv
}

// NewPlanStore creates a diskv-backed plan store rooted at basePath.
func NewPlanStore(basePath string) (PlanStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("plan store path required")
	}
	return &planStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func planKey(userID string) string {
	// diskv keys map to file names; keep them flat and safe.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
	return safe + ".json"
}

func (s *planStore) Save(userID string, plan *model.NextDayPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := s.d.Write(planKey(userID), data); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

func (s *planStore) Get(userID string) (*model.NextDayPlan, error) {
	data, err := s.d.Read(planKey(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan model.NextDayPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}
