package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"focuscoach/internal/model"
	"focuscoach/internal/planner"
	"focuscoach/internal/push"
	"focuscoach/internal/repository"
)

// ImpulseWriter generates notification copy from a prompt.
type ImpulseWriter interface {
	DailyImpulse(ctx context.Context, prompt string) (title, body string, err error)
}

// PushSender delivers one message to one subscription.
type PushSender interface {
	Send(ctx context.Context, sub model.Subscription, msg push.Message) error
}

// DispatchService fires reminder pushes. It runs once a minute, matches
// every user's preferred local times against the wall clock in their
// timezone and sends an LLM-written impulse to each stored subscription.
// There is no sent-marker; a minute that fires twice sends twice.
type DispatchService struct {
	prefs     *repository.PreferenceRepository
	subs      *repository.SubscriptionRepository
	impulse   ImpulseWriter
	sender    PushSender
	defaultTZ string
	log       *zap.Logger
}

func NewDispatchService(
	prefs *repository.PreferenceRepository,
	subs *repository.SubscriptionRepository,
	impulse ImpulseWriter,
	sender PushSender,
	defaultTZ string,
	log *zap.Logger,
) *DispatchService {
	return &DispatchService{
		prefs:     prefs,
		subs:      subs,
		impulse:   impulse,
		sender:    sender,
		defaultTZ: defaultTZ,
		log:       log,
	}
}

// Run performs one dispatch pass for the given instant and returns the
// number of pushes delivered. One user's failure never blocks the others.
func (s *DispatchService) Run(ctx context.Context, now time.Time) int {
	if s.sender == nil {
		return 0
	}

	prefs, err := s.prefs.ListAll(ctx)
	if err != nil {
		s.log.Error("list preferences", zap.Error(err))
		return 0
	}

	sent := 0
	for _, pref := range prefs {
		n, err := s.dispatchFor(ctx, pref, now)
		if err != nil {
			s.log.Warn("dispatch reminders", zap.String("user", pref.UserID), zap.Error(err))
			continue
		}
		sent += n
	}
	if sent > 0 {
		s.log.Info("reminders dispatched", zap.Int("sent", sent))
	}
	return sent
}

func (s *DispatchService) dispatchFor(ctx context.Context, pref model.Preference, now time.Time) (int, error) {
	if !s.dueAt(pref, now) {
		return 0, nil
	}

	subs, err := s.subs.FindByUser(ctx, pref.UserID)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}

	msg := s.buildMessage(ctx, pref)
	sent := 0
	for _, sub := range subs {
		if err := s.sender.Send(ctx, sub, msg); err != nil {
			s.log.Warn("send push",
				zap.String("user", pref.UserID),
				zap.String("endpoint", sub.Endpoint),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// dueAt reports whether the current minute in the user's timezone matches
// one of the preferred times. An unknown timezone falls back to the default.
func (s *DispatchService) dueAt(pref model.Preference, now time.Time) bool {
	tz := pref.TZ
	if tz == "" {
		tz = s.defaultTZ
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("load timezone", zap.String("tz", tz), zap.Error(err))
		loc, err = time.LoadLocation(s.defaultTZ)
		if err != nil {
			loc = time.UTC
		}
	}

	local := now.In(loc).Format("15:04")
	for _, t := range pref.Times {
		if t == local {
			return true
		}
	}
	return false
}

// buildMessage asks the impulse writer for notification copy and falls back
// to a static line when none is available.
func (s *DispatchService) buildMessage(ctx context.Context, pref model.Preference) push.Message {
	title, body := "Daily impulse", "One small step. Start now."
	if s.impulse != nil {
		t, b, err := s.impulse.DailyImpulse(ctx, planner.ImpulsePrompt(pref.WishText))
		if err != nil {
			s.log.Warn("generate impulse", zap.String("user", pref.UserID), zap.Error(err))
		} else {
			title, body = t, b
		}
	}
	return push.Message{Title: title, Body: body, URL: "/plan"}
}
