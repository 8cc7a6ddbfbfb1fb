package server

import (
	"net/http"
	"time"

	"github.com/andresilva/b3folio/internal/common"
)

// handleHealth returns service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.startup).Round(time.Second).String(),
		"version": common.GetVersion(),
	})
}

// handleVersion returns full build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig returns the non-sensitive runtime configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.config.Environment,
		"quote_provider":    s.config.Clients.Brapi.BaseURL,
		"ai_model":          s.config.Clients.Gemini.Model,
		"quotes_available":  s.quotes != nil,
		"ai_available":      s.ai != nil,
		"valuation_enabled": s.valuation != nil,
	})
}
