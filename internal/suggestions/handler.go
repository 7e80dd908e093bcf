package suggestions

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/matchminds/backend/internal/metrics"
	"github.com/matchminds/backend/internal/models"
	"github.com/matchminds/backend/internal/session"
)

type Handler struct {
	selector *Selector
	sessions *session.Issuer
}

func NewHandler(selector *Selector, sessions *session.Issuer) *Handler {
	return &Handler{selector: selector, sessions: sessions}
}

// GetSuggestions reads the session token from the Authorization header or
// the session query parameter.
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("session")
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			metrics.SuggestionsTotal.WithLabelValues("unauthorized").Inc()
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid authorization format"})
			return
		}
		token = parts[1]
	}
	if token == "" {
		metrics.SuggestionsTotal.WithLabelValues("unauthorized").Inc()
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Run a compatibility check first"})
		return
	}

	sess, err := h.sessions.Parse(token)
	if err != nil {
		log.Printf("[suggestions] rejected session: %v", err)
		metrics.SuggestionsTotal.WithLabelValues("unauthorized").Inc()
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired session"})
		return
	}

	resp, err := h.selector.ForSession(*sess)
	if err != nil {
		log.Printf("[suggestions] %v", err)
		metrics.SuggestionsTotal.WithLabelValues("stale").Inc()
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "The model was retrained since this check; run the check again"})
		return
	}
	outcome := "ok"
	if len(resp.Friend1.Suggestions) == 0 && len(resp.Friend2.Suggestions) == 0 {
		outcome = "empty"
	}
	metrics.SuggestionsTotal.WithLabelValues(outcome).Inc()
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
