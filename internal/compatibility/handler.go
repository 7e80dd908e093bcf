package compatibility

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/matchminds/backend/internal/models"
)

const maxBodyBytes = 1 << 20

// History is the read side of the check store.
type History interface {
	ListChecks(ctx context.Context, limit, offset int) ([]models.CompatibilityCheck, int, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

type Handler struct {
	service  *Service
	history  History
	validate *validator.Validate
}

func NewHandler(service *Service, history History) *Handler {
	return &Handler{
		service:  service,
		history:  history,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	questions := h.service.Questionnaire()
	writeJSON(w, http.StatusOK, models.QuestionnaireResponse{
		Questions: questions,
		Total:     len(questions),
	})
}

// FormProgress reports which step each friend is on without scoring.
func (h *Handler) FormProgress(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Progress(req))
}

func (h *Handler) CheckCompatibility(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Check(r.Context(), req)
	var incomplete *IncompleteError
	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, models.IncompleteResponse{
			Error:    "Both friends must complete the form before checking compatibility",
			Progress: incomplete.Progress,
		})
		return
	case errors.Is(err, ErrInvalidAnswer):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Printf("[compat] check failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to compute compatibility"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListChecks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	if limit == 0 || limit > 100 {
		limit = 20
	}
	offset := intQueryParam(query, "offset", 0)

	checks, total, err := h.history.ListChecks(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[compat] list checks: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list checks"})
		return
	}
	if checks == nil {
		checks = []models.CompatibilityCheck{}
	}

	writeJSON(w, http.StatusOK, models.CheckListResponse{
		Checks:   checks,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context())
	if err != nil {
		log.Printf("[compat] stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Reload()
	if err != nil {
		log.Printf("[compat] reload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Reload failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.ReloadResponse{
		Features: len(b.Schema),
		Clusters: b.Model.K(),
		Rows:     b.Scaler.SamplesSeen,
		Model:    b.Model.Fingerprint(),
		LoadedAt: b.LoadedAt,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (models.CompatibilityRequest, bool) {
	var req models.CompatibilityRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationMessage(err)})
		return req, false
	}
	return req, true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return "invalid field " + fe.Namespace() + ": failed '" + fe.Tag() + "'"
	}
	return "Invalid request body"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
