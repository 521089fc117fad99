package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"focuscoach/internal/model"
	"focuscoach/internal/planner"
	"focuscoach/internal/provider"
	"focuscoach/internal/repository"
	"focuscoach/internal/store"
)

// ErrEmptyTranscript is returned when speech recognition yields no text.
// Handlers map it to HTTP 422.
var ErrEmptyTranscript = errors.New("empty transcript")

// PlanGenerator produces raw plan JSON from a prompt.
type PlanGenerator interface {
	GeneratePlanJSON(ctx context.Context, prompt string) (string, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, filename string) (string, error)
}

// PlannerService turns free-form text or speech into a normalized next-day
// plan, snapshots it for the ICS export and materializes it into plan
// events.
type PlannerService struct {
	generator  PlanGenerator
	whisper    Transcriber
	gemini     Transcriber
	plans      store.PlanStore
	events     *repository.EventRepository
	categories *repository.CategoryRepository
	defaults   planner.Options
	log        *zap.Logger
	now        func() time.Time
}

// PlannerDeps bundles the collaborators of a PlannerService. Generator and
// the transcribers may be nil when credentials are missing; the affected
// operations then fail with ErrNotConfigured.
type PlannerDeps struct {
	Generator  PlanGenerator
	Whisper    Transcriber
	Gemini     Transcriber
	Plans      store.PlanStore
	Events     *repository.EventRepository
	Categories *repository.CategoryRepository
	Defaults   planner.Options
	Log        *zap.Logger
}

func NewPlannerService(deps PlannerDeps) *PlannerService {
	return &PlannerService{
		generator:  deps.Generator,
		whisper:    deps.Whisper,
		gemini:     deps.Gemini,
		plans:      deps.Plans,
		events:     deps.Events,
		categories: deps.Categories,
		defaults:   deps.Defaults,
		log:        deps.Log,
		now:        time.Now,
	}
}

// PlanFromText generates, normalizes and stores a plan from user notes.
// Malformed model output degrades to an empty plan rather than failing.
func (s *PlannerService) PlanFromText(ctx context.Context, userID, text string, opts planner.Options) (*model.NextDayPlan, error) {
	if s.generator == nil {
		return nil, provider.ErrNotConfigured
	}
	now := s.now()
	opts = s.withServiceDefaults(opts).WithDefaults(now)

	raw, err := s.generator.GeneratePlanJSON(ctx, planner.PlanPrompt(text, opts))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	plan := planner.Normalize(raw, opts, now)

	if err := s.plans.Save(userID, plan); err != nil {
		s.log.Warn("save plan snapshot", zap.String("user", userID), zap.Error(err))
	}
	s.materialize(ctx, userID, plan, now)

	s.log.Info("plan generated",
		zap.String("user", userID),
		zap.String("date", plan.Date),
		zap.Int("tasks", len(plan.Tasks)))
	return plan, nil
}

// PlanFromSpeech transcribes the recording and feeds the transcript through
// PlanFromText.
func (s *PlannerService) PlanFromSpeech(ctx context.Context, userID string, audio []byte, mimeType, filename string, opts planner.Options) (*model.NextDayPlan, string, error) {
	transcript, err := s.Transcribe(ctx, audio, mimeType, filename)
	if err != nil {
		return nil, "", err
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, "", ErrEmptyTranscript
	}

	plan, err := s.PlanFromText(ctx, userID, transcript, opts)
	if err != nil {
		return nil, transcript, err
	}
	return plan, transcript, nil
}

// Transcribe prefers Whisper and falls back to Gemini when Whisper is
// unavailable or fails.
func (s *PlannerService) Transcribe(ctx context.Context, audio []byte, mimeType, filename string) (string, error) {
	if s.whisper == nil && s.gemini == nil {
		return "", provider.ErrNotConfigured
	}

	if s.whisper != nil {
		text, err := s.whisper.Transcribe(ctx, audio, mimeType, filename)
		if err == nil {
			return text, nil
		}
		s.log.Warn("whisper transcription failed", zap.Error(err))
		if s.gemini == nil {
			return "", err
		}
	}
	return s.gemini.Transcribe(ctx, audio, mimeType, filename)
}

// StoredPlan returns the latest stored plan snapshot for the user.
func (s *PlannerService) StoredPlan(userID string) (*model.NextDayPlan, error) {
	return s.plans.Get(userID)
}

// ExportICS renders the user's stored plan as an iCalendar document. A
// non-empty date must match the stored plan's date; only the latest plan is
// kept, so a stale date yields store.ErrNotFound.
func (s *PlannerService) ExportICS(userID, date string) (string, error) {
	plan, err := s.plans.Get(userID)
	if err != nil {
		return "", err
	}
	if date != "" && date != plan.Date {
		return "", store.ErrNotFound
	}
	return BuildICS(userID, plan, s.now()), nil
}

// materialize turns plan tasks into stored events for the plan date and
// marks their categories active. Previous events for that date are kept;
// repeated generations may create duplicates, which the client tolerates.
func (s *PlannerService) materialize(ctx context.Context, userID string, plan *model.NextDayPlan, now time.Time) {
	if len(plan.Tasks) == 0 {
		return
	}

	events := make([]model.PlanEvent, 0, len(plan.Tasks))
	seen := map[string]bool{}
	categories := make([]string, 0, 4)
	for i, task := range plan.Tasks {
		events = append(events, model.PlanEvent{
			ID:       fmt.Sprintf("%s-%d", newEventID(now), i),
			UserID:   userID,
			Title:    task.Title,
			Time:     timeOfDay(task.Start),
			Category: task.Category,
			Date:     plan.Date,
		})
		if !seen[task.Category] {
			seen[task.Category] = true
			categories = append(categories, task.Category)
		}
	}

	if err := s.events.CreateBatch(ctx, events); err != nil {
		s.log.Warn("materialize plan events", zap.String("user", userID), zap.Error(err))
		return
	}
	if err := s.categories.MarkActive(ctx, categories, now); err != nil {
		s.log.Warn("mark plan categories active", zap.Error(err))
	}
}

// withServiceDefaults fills unset options from configuration. Each window
// bound defaults independently, so a request with only startHour keeps the
// configured end hour.
func (s *PlannerService) withServiceDefaults(opts planner.Options) planner.Options {
	if opts.Timezone == "" {
		opts.Timezone = s.defaults.Timezone
	}
	if opts.StartHour == 0 {
		opts.StartHour = s.defaults.StartHour
	}
	if opts.EndHour == 0 {
		opts.EndHour = s.defaults.EndHour
	}
	return opts
}

// timeOfDay extracts "HH:MM" from a "YYYY-MM-DDTHH:MM:SS" timestamp.
func timeOfDay(s string) string {
	if len(s) < 16 {
		return ""
	}
	return s[11:16]
}
