package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"focuscoach/internal/model"
	"focuscoach/internal/push"
)

var timeOfDayRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// handlePreferences stores the user's reminder wish, times and timezone.
// Times are normalized to zero-padded "HH:MM"; entries that do not parse
// are dropped.
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string   `json:"userId"`
		WishText string   `json:"wishText"`
		Times    []string `json:"times"`
		TZ       string   `json:"tz"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.TZ != "" {
		if _, err := time.LoadLocation(req.TZ); err != nil {
			writeError(w, http.StatusBadRequest, "unknown timezone")
			return
		}
	}

	pref := &model.Preference{
		UserID:   userIDOr(req.UserID),
		WishText: strings.TrimSpace(req.WishText),
		Times:    normalizeTimes(req.Times),
		TZ:       req.TZ,
	}
	if err := s.prefs.Upsert(r.Context(), pref); err != nil {
		s.log.Error("save preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save preferences failed")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// handleSubscribe stores a Web-Push subscription, deduplicated by endpoint.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint required")
		return
	}

	sub := &model.Subscription{
		Endpoint: req.Endpoint,
		UserID:   userIDOr(req.UserID),
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.subs.Upsert(r.Context(), sub); err != nil {
		s.log.Error("save subscription", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save subscription failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// handlePushSend fires a test notification to every subscription of a user.
func (s *Server) handlePushSend(w http.ResponseWriter, r *http.Request) {
	if s.sender == nil {
		writeError(w, http.StatusNotImplemented, "push not configured")
		return
	}

	var req struct {
		UserID string `json:"userId"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		URL    string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg := push.Message{Title: req.Title, Body: req.Body, URL: req.URL}
	if msg.Title == "" {
		msg.Title = "Focus Coach"
	}
	if msg.URL == "" {
		msg.URL = "/plan"
	}

	subs, err := s.subs.FindByUser(r.Context(), userIDOr(req.UserID))
	if err != nil {
		s.log.Error("find subscriptions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "push send failed")
		return
	}

	sent := 0
	for _, sub := range subs {
		if err := s.sender.Send(r.Context(), sub, msg); err != nil {
			s.log.Warn("send push", zap.String("endpoint", sub.Endpoint), zap.Error(err))
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

// normalizeTimes zero-pads valid "H:MM"/"HH:MM" entries and drops the rest.
func normalizeTimes(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		m := timeOfDayRe.FindStringSubmatch(strings.TrimSpace(t))
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		out = append(out, fmt.Sprintf("%02d:%s", hour, m[2]))
	}
	return out
}
