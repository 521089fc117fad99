package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"focuscoach/internal/config"
	"focuscoach/internal/model"
	"focuscoach/internal/planner"
	"focuscoach/internal/push"
	"focuscoach/internal/repository"
	"focuscoach/internal/service"
	"focuscoach/internal/store"
)

type fixedGenerator struct{ raw string }

func (g fixedGenerator) GeneratePlanJSON(context.Context, string) (string, error) {
	return g.raw, nil
}

type fixedTranscriber struct{ text string }

func (f fixedTranscriber) Transcribe(context.Context, []byte, string, string) (string, error) {
	return f.text, nil
}

type recordingSender struct{ sent []push.Message }

func (s *recordingSender) Send(_ context.Context, _ model.Subscription, msg push.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type testEnv struct {
	handler http.Handler
	subs    *repository.SubscriptionRepository
	sender  *recordingSender
}

func newTestEnv(t *testing.T, gen service.PlanGenerator) *testEnv {
	return newTestEnvWith(t, gen, nil)
}

func newTestEnvWith(t *testing.T, gen service.PlanGenerator, whisper service.Transcriber) *testEnv {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	categories := repository.NewCategoryRepository(db)
	require.NoError(t, categories.EnsureDefaults(context.Background()))
	events := repository.NewEventRepository(db)
	prefs := repository.NewPreferenceRepository(db)
	subs := repository.NewSubscriptionRepository(db)

	plans, err := store.NewPlanStore(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{DefaultTimezone: "Europe/Berlin", DayStartHour: 9, DayEndHour: 18, GraceHours: 10}

	plannerSvc := service.NewPlannerService(service.PlannerDeps{
		Generator:  gen,
		Whisper:    whisper,
		Plans:      plans,
		Events:     events,
		Categories: categories,
		Defaults:   planner.Options{Timezone: cfg.DefaultTimezone, StartHour: cfg.DayStartHour, EndHour: cfg.DayEndHour},
		Log:        log,
	})

	sender := &recordingSender{}
	srv := NewServer(Deps{
		Planner: plannerSvc,
		Events:  service.NewEventService(events, categories, log),
		Flames:  service.NewFlameService(categories, events, cfg.GraceHours, log),
		Prefs:   prefs,
		Subs:    subs,
		Sender:  sender,
		Config:  cfg,
		Log:     log,
	})
	return &testEnv{handler: srv.Handler(), subs: subs, sender: sender}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// newAudioForm writes a multipart body with a single "file" part and
// returns its content type.
func newAudioForm(t *testing.T, buf *bytes.Buffer, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", "speech.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestPlanDay_WithoutProviderIs501WithEmptyEvents(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/plan/day", map[string]string{"description": "meeting at 10, then gym"})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.NotNil(t, body["error"])
	assert.Empty(t, body["events"])
}

func TestPlanDay_MissingDescriptionIs400(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{raw: "{}"})

	rec := env.do(t, http.MethodPost, "/api/plan/day", map[string]string{"description": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanDay_ReturnsNormalizedEvents(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{raw: `{
		"date": "2026-03-02",
		"timezone": "Europe/Berlin",
		"tasks": [
			{"title": "Gym", "start": "2026-03-02T07:00:00", "end": "2026-03-02T08:00:00", "category": "yoga"}
		]
	}`})

	rec := env.do(t, http.MethodPost, "/api/plan/day", map[string]string{"description": "gym at seven"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Date     string         `json:"date"`
		Timezone string         `json:"timezone"`
		Events   []planDayEvent `json:"events"`
	}](t, rec)
	assert.Equal(t, "2026-03-02", body.Date)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Gym", body.Events[0].Title)
	assert.Equal(t, "other", body.Events[0].Category, "unknown categories coerce to other")
}

func TestSTT_WithoutProviderIs501(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := newAudioForm(t, &buf, "hello")
	req := httptest.NewRequest(http.MethodPost, "/api/stt", &buf)
	req.Header.Set("Content-Type", mw)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestPlanFromSpeech_MissingFileIs400(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/plan/from-speech", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanFromSpeech_IcsURLCarriesPlanDate(t *testing.T) {
	env := newTestEnvWith(t, fixedGenerator{raw: `{
		"date": "2026-03-02",
		"timezone": "UTC",
		"tasks": [{"title": "Gym", "start": "2026-03-02T07:00:00", "end": "2026-03-02T08:00:00", "category": "fitness"}]
	}`}, fixedTranscriber{text: "gym at seven"})

	var buf bytes.Buffer
	contentType := newAudioForm(t, &buf, "fake audio")
	req := httptest.NewRequest(http.MethodPost, "/api/plan/from-speech", &buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		Text   string `json:"text"`
		IcsURL string `json:"icsUrl"`
	}](t, rec)
	assert.Equal(t, "gym at seven", body.Text)
	assert.Equal(t, "/api/plan/ics?userId=default&date=2026-03-02", body.IcsURL)
}

func TestPreferences_NormalizesTimes(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/preferences", map[string]any{
		"userId":   "user-1",
		"wishText": "  run more  ",
		"times":    []string{"7:30", "09:05", "25:00", "junk", "9:99"},
		"tz":       "Europe/Berlin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	pref := decodeBody[model.Preference](t, rec)
	assert.Equal(t, []string{"07:30", "09:05"}, pref.Times)
	assert.Equal(t, "run more", pref.WishText)
}

func TestPreferences_UnknownTimezoneIs400(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/preferences", map[string]any{
		"userId": "user-1", "tz": "Mars/OlympusMons",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribe_DeduplicatesByEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	sub := map[string]any{
		"userId":   "user-1",
		"endpoint": "https://push.example/abc",
		"keys":     map[string]string{"p256dh": "pk", "auth": "a"},
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/push/subscribe", sub).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/push/subscribe", sub).Code)

	n, err := env.subs.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubscribe_MissingEndpointIs400(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/push/subscribe", map[string]any{"userId": "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushSend_DeliversToUserSubscriptions(t *testing.T) {
	env := newTestEnv(t, nil)

	sub := map[string]any{
		"userId":   "user-1",
		"endpoint": "https://push.example/abc",
		"keys":     map[string]string{"p256dh": "pk", "auth": "a"},
	}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/push/subscribe", sub).Code)

	rec := env.do(t, http.MethodPost, "/api/push/send", map[string]string{"userId": "user-1", "title": "Hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[map[string]int](t, rec)
	assert.Equal(t, 1, body["sent"])
	require.Len(t, env.sender.sent, 1)
	assert.Equal(t, "Hi", env.sender.sent[0].Title)
	assert.Equal(t, "/plan", env.sender.sent[0].URL)
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/events", map[string]any{
		"userId": "user-1", "title": "Deep work", "time": "10:00", "category": "work",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[model.PlanEvent](t, rec)
	require.NotEmpty(t, created.ID)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/toggle?userId=user-1", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[model.PlanEvent](t, rec).Completed)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/events/%s?userId=user-1", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/events?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[struct {
		Events []model.PlanEvent `json:"events"`
	}](t, rec).Events)

	rec = env.do(t, http.MethodGet, "/api/events/deleted?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/events/%s/restore?userId=user-1", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	restored := decodeBody[model.PlanEvent](t, rec)
	assert.Equal(t, created.ID, restored.ID)
	assert.Equal(t, "Deep work", restored.Title)
	assert.True(t, restored.Completed)
}

func TestToggleUnknownEventIs404(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/events/nope/toggle?userId=user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlamesEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/flames?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeBody[service.FlameSnapshot](t, rec)
	assert.Len(t, snap.Flames, 11)
	assert.Equal(t, 0, snap.MasterPercent)
}

func TestICS_WithoutStoredPlanIs404(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/plan/ics?userId=user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestICS_AfterPlanGeneration(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{raw: `{
		"date": "2026-03-02",
		"timezone": "UTC",
		"tasks": [{"title": "Gym", "start": "2026-03-02T07:00:00", "end": "2026-03-02T08:00:00", "category": "fitness"}]
	}`})

	rec := env.do(t, http.MethodPost, "/api/plan/day", map[string]string{"description": "gym", "userId": "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/plan/ics?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "UID:user-1-2026-03-02-0@focuscoach")
}

func TestICS_DateMustMatchStoredPlan(t *testing.T) {
	env := newTestEnv(t, fixedGenerator{raw: `{
		"date": "2026-03-02",
		"timezone": "UTC",
		"tasks": [{"title": "Gym", "start": "2026-03-02T07:00:00", "end": "2026-03-02T08:00:00", "category": "fitness"}]
	}`})

	rec := env.do(t, http.MethodPost, "/api/plan/day", map[string]string{"description": "gym", "userId": "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/plan/ics?userId=user-1&date=2026-03-02", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/plan/ics?userId=user-1&date=2020-01-01", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/health/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keys := decodeBody[map[string]bool](t, rec)
	assert.False(t, keys["openai"])
	assert.False(t, keys["gemini"])
	assert.False(t, keys["push"])
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/plan/day", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
