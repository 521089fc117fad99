// Package httpapi exposes the planning, flame and push features over HTTP.
// All endpoints answer JSON except the ICS export.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"focuscoach/internal/config"
	"focuscoach/internal/repository"
	"focuscoach/internal/service"
)

// Server wires the HTTP surface to the services.
type Server struct {
	planner *service.PlannerService
	events  *service.EventService
	flames  *service.FlameService
	prefs   *repository.PreferenceRepository
	subs    *repository.SubscriptionRepository
	sender  service.PushSender
	cfg     config.Config
	log     *zap.Logger
	now     func() time.Time
}

// Deps bundles the server's collaborators. Sender may be nil when VAPID
// keys are missing; push endpoints then answer 501.
type Deps struct {
	Planner *service.PlannerService
	Events  *service.EventService
	Flames  *service.FlameService
	Prefs   *repository.PreferenceRepository
	Subs    *repository.SubscriptionRepository
	Sender  service.PushSender
	Config  config.Config
	Log     *zap.Logger
}

func NewServer(deps Deps) *Server {
	return &Server{
		planner: deps.Planner,
		events:  deps.Events,
		flames:  deps.Flames,
		prefs:   deps.Prefs,
		subs:    deps.Subs,
		sender:  deps.Sender,
		cfg:     deps.Config,
		log:     deps.Log,
		now:     time.Now,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/plan/from-speech", s.handlePlanFromSpeech)
	mux.HandleFunc("POST /api/plan/day", s.handlePlanDay)
	mux.HandleFunc("POST /api/stt", s.handleSTT)
	mux.HandleFunc("GET /api/plan/ics", s.handleICS)

	mux.HandleFunc("POST /api/preferences", s.handlePreferences)
	mux.HandleFunc("POST /api/push/subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /api/push/send", s.handlePushSend)

	mux.HandleFunc("POST /api/events", s.handleAddEvent)
	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/deleted", s.handleListDeleted)
	mux.HandleFunc("POST /api/events/{id}/toggle", s.handleToggleEvent)
	mux.HandleFunc("POST /api/events/{id}/restore", s.handleRestoreEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	mux.HandleFunc("GET /api/flames", s.handleFlames)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/health/keys", s.handleHealthKeys)

	return withCORS(mux)
}

// withCORS answers preflight requests and opens the API to the PWA origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userIDOr returns the given user id or the single-user default.
func userIDOr(id string) string {
	if id == "" {
		return "default"
	}
	return id
}
