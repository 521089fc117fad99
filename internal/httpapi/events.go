package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"focuscoach/internal/model"
	"focuscoach/internal/service"
)

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string `json:"userId"`
		Title           string `json:"title"`
		Time            string `json:"time"`
		Category        string `json:"category"`
		Description     string `json:"description"`
		Date            string `json:"date"`
		ReminderMinutes int    `json:"reminderMinutes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}

	event, err := s.events.Add(r.Context(), userIDOr(req.UserID), service.AddEventInput{
		Title:           req.Title,
		Time:            req.Time,
		Category:        req.Category,
		Description:     req.Description,
		Date:            req.Date,
		ReminderMinutes: req.ReminderMinutes,
	})
	if err != nil {
		s.log.Error("add event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "add event failed")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := s.events.List(r.Context(), userIDOr(q.Get("userId")), q.Get("date"))
	if err != nil {
		s.log.Error("list events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list events failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleToggleEvent(w http.ResponseWriter, r *http.Request) {
	userID := userIDOr(r.URL.Query().Get("userId"))

	event, err := s.events.Toggle(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeEventError(w, err, "toggle event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := userIDOr(r.URL.Query().Get("userId"))

	deleted, err := s.events.Delete(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeEventError(w, err, "delete event")
		return
	}
	writeJSON(w, http.StatusOK, deletedEventDTO(*deleted))
}

func (s *Server) handleRestoreEvent(w http.ResponseWriter, r *http.Request) {
	userID := userIDOr(r.URL.Query().Get("userId"))

	event, err := s.events.Restore(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.writeEventError(w, err, "restore event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	userID := userIDOr(r.URL.Query().Get("userId"))

	deleted, err := s.events.ListDeleted(r.Context(), userID)
	if err != nil {
		s.log.Error("list deleted events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list deleted failed")
		return
	}

	out := make([]map[string]any, 0, len(deleted))
	for _, d := range deleted {
		out = append(out, deletedEventDTO(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": out})
}

func (s *Server) handleFlames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := userIDOr(q.Get("userId"))

	tz := q.Get("tz")
	if tz == "" {
		tz = s.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	snap, err := s.flames.Snapshot(r.Context(), userID, s.now().In(loc))
	if err != nil {
		s.log.Error("flame snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "flame snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeEventError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	s.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, op+" failed")
}

// deletedEventDTO exposes a soft-deleted event as the original record plus
// its deletion timestamp.
func deletedEventDTO(d model.DeletedEvent) map[string]any {
	return map[string]any{
		"event":     d.Event(),
		"deletedAt": d.DeletedAt,
	}
}
