package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_ScheduleEveryMinute(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	defer s.Stop()

	id, err := s.ScheduleEveryMinute(func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestSchedulerService_ScheduleInterval(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	defer s.Stop()

	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	id, err := s.ScheduleInterval(90*time.Second, func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestSchedulerService_IntervalJobFires(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	fired := make(chan struct{}, 4)
	_, err := s.ScheduleInterval(time.Second, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("interval job did not fire")
	}
}
