package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"focuscoach/internal/planner"
	"focuscoach/internal/provider"
	"focuscoach/internal/service"
	"focuscoach/internal/store"
)

const maxAudioBytes = 32 << 20 // 32MB

// planDayEvent is the wire shape of one task in the text-to-plan response.
type planDayEvent struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
}

// handlePlanFromSpeech accepts a voice recording, transcribes it and
// returns the generated plan together with the transcript.
func (s *Server) handlePlanFromSpeech(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read audio")
		return
	}

	userID := userIDOr(r.FormValue("userId"))
	opts := s.planOptions(r.FormValue)

	plan, transcript, err := s.planner.PlanFromSpeech(r.Context(), userID, audio, header.Header.Get("Content-Type"), header.Filename, opts)
	if err != nil {
		s.writePlanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":   transcript,
		"plan":   plan,
		"icsUrl": "/api/plan/ics?userId=" + url.QueryEscape(userID) + "&date=" + url.QueryEscape(plan.Date),
	})
}

// handlePlanDay generates a plan from a free-text description.
func (s *Server) handlePlanDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description   string `json:"description"`
		UserID        string `json:"userId"`
		IncludeInputs bool   `json:"includeInputs"`
		StartHour     int    `json:"startHour"`
		EndHour       int    `json:"endHour"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description required")
		return
	}

	opts := planner.Options{
		IncludeInputs: req.IncludeInputs,
		StartHour:     req.StartHour,
		EndHour:       req.EndHour,
	}
	plan, err := s.planner.PlanFromText(r.Context(), userIDOr(req.UserID), req.Description, opts)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			writeJSON(w, http.StatusNotImplemented, map[string]any{
				"error":  "no plan provider configured",
				"events": []planDayEvent{},
			})
			return
		}
		s.log.Error("plan from text", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "plan generation failed",
			"events": []planDayEvent{},
		})
		return
	}

	events := make([]planDayEvent, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		events = append(events, planDayEvent{Title: t.Title, Start: t.Start, End: t.End, Category: t.Category})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     plan.Date,
		"timezone": plan.Timezone,
		"events":   events,
	})
}

// handleSTT transcribes an uploaded recording without generating a plan.
func (s *Server) handleSTT(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read audio")
		return
	}

	text, err := s.planner.Transcribe(r.Context(), audio, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		s.writePlanError(w, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "empty transcript")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// handleICS serves the stored plan as a calendar file. A date parameter
// that does not match the stored plan answers 404.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := userIDOr(q.Get("userId"))

	ics, err := s.planner.ExportICS(userID, q.Get("date"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no plan stored for that date")
			return
		}
		s.log.Error("export ics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="plan.ics"`)
	_, _ = io.WriteString(w, ics)
}

// planOptions reads the optional plan parameters from form values.
func (s *Server) planOptions(value func(string) string) planner.Options {
	opts := planner.Options{
		Day:           value("day"),
		Timezone:      value("tz"),
		IncludeInputs: value("includeInputs") == "true",
	}
	if n, err := strconv.Atoi(value("startHour")); err == nil {
		opts.StartHour = n
	}
	if n, err := strconv.Atoi(value("endHour")); err == nil {
		opts.EndHour = n
	}
	return opts
}

// writePlanError maps planner errors to the response taxonomy: 501 for
// missing credentials, 422 for silent recordings, 500 otherwise.
func (s *Server) writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		writeError(w, http.StatusNotImplemented, "no speech provider configured")
	case errors.Is(err, service.ErrEmptyTranscript):
		writeError(w, http.StatusUnprocessableEntity, "empty transcript")
	default:
		s.log.Error("plan request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
