package httpapi

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": s.now().UTC(),
	})
}

// handleHealthKeys reports which credentials are configured. Presence only,
// never values.
func (s *Server) handleHealthKeys(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"openai": s.cfg.OpenAIAPIKey != "",
		"gemini": s.cfg.GoogleAPIKey != "",
		"push":   s.cfg.HasPushCredentials(),
	})
}
