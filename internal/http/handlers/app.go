package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
	"lessonserver/internal/lessongen"
	"lessonserver/internal/metrics"
	"lessonserver/internal/storage"
)

const maxBodyBytes = 1 << 20

// App holds the collaborators shared by every handler.
type App struct {
	Service          *lessongen.Service
	Lessons          domain.LessonRepository
	Store            storage.ObjectStore
	Metrics          *metrics.Metrics
	Logger           infra.Logger
	GeminiConfigured bool
}

type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorPayload{Error: errorDetail{Code: code, Message: message}})
}

// fail maps domain errors onto HTTP statuses. Anything unrecognized is logged
// and reported as an internal error.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "lesson not found")
	case errors.As(err, &invalid):
		a.error(w, http.StatusBadRequest, "invalid_lesson", invalid.Error())
	case errors.Is(err, domain.ErrTopicRequired), errors.Is(err, domain.ErrInvalidItemCount):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.log(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// log returns the request-scoped logger, falling back to the app logger.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// decode reads a single JSON document of at most maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
