package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lessonserver/internal/domain"
	"lessonserver/internal/middleware"
	"lessonserver/pkg/zip"
)

const maxExportImageBytes = 10 << 20

type generateLessonRequest struct {
	Topic     string `json:"topic"`
	ItemCount *int   `json:"itemCount,omitempty"`
	Language  string `json:"language,omitempty"`
}

// GenerateLesson runs the generation pipeline and persists the lesson.
// ?mode=content skips the image step.
func (a *App) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var body generateLessonRequest
	if err := decode(w, r, &body); err != nil {
		a.json(w, http.StatusBadRequest, domain.Failed(err.Error()))
		return
	}
	req := domain.GenerationRequest{Topic: body.Topic, ItemCount: body.ItemCount, Language: body.Language}
	if req.Language == "" {
		req.Language = middleware.LocaleFromContext(r.Context())
	}
	if err := req.Normalize(); err != nil {
		a.json(w, http.StatusBadRequest, domain.Failed(err.Error()))
		return
	}

	var result domain.GenerationResult
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "full":
		result = a.Service.GenerateLesson(r.Context(), req)
	case "content":
		result = a.Service.GenerateContentOnly(r.Context(), req)
	default:
		a.json(w, http.StatusBadRequest, domain.Failed(fmt.Sprintf("unknown mode %q", mode)))
		return
	}
	if !result.Success {
		a.json(w, http.StatusBadGateway, result)
		return
	}
	a.json(w, http.StatusCreated, result)
}

func (a *App) ListLessons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := domain.ListParams{Search: q.Get("search")}
	var err error
	if params.Limit, err = intParam(q.Get("limit")); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "limit must be a number")
		return
	}
	if params.Offset, err = intParam(q.Get("offset")); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "offset must be a number")
		return
	}
	page, err := a.Lessons.List(r.Context(), params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, page)
}

// CreateLesson stores a lesson written by hand.
func (a *App) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var form domain.LessonFormData
	if err := decode(w, r, &form); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	lesson, err := a.Lessons.Create(r.Context(), form)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Metrics.ObserveLessonCreated()
	a.json(w, http.StatusCreated, lesson)
}

func (a *App) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := a.lessonID(w, r)
	if !ok {
		return
	}
	lesson, err := a.Lessons.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, lesson)
}

func (a *App) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := a.lessonID(w, r)
	if !ok {
		return
	}
	if err := a.Lessons.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportLesson returns a zip with lesson.json and every image the object store
// still holds. Images stored elsewhere stay referenced by URL only.
func (a *App) ExportLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := a.lessonID(w, r)
	if !ok {
		return
	}
	lesson, err := a.Lessons.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	doc, err := json.MarshalIndent(lesson, "", "  ")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	assets := []zip.Asset{{Filename: "lesson.json", MIME: "application/json", Data: doc, Modified: lesson.UpdatedAt}}
	for i, item := range lesson.Items {
		key, ok := a.storeKey(item.Image)
		if !ok {
			continue
		}
		data, err := a.readObject(r.Context(), key)
		if err != nil {
			a.log(r).Warn().Err(err).Str("key", key).Msg("export skipped image")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("images/%02d-%s", i+1, path.Base(key)),
			MIME:     mime.TypeByExtension(path.Ext(key)),
			Data:     data,
			Modified: lesson.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=lesson-%s.zip", lesson.ID))
	w.WriteHeader(http.StatusOK)
	if err := zip.WriteArchive(w, assets); err != nil {
		a.log(r).Error().Err(err).Str("lesson_id", lesson.ID.String()).Msg("export failed")
	}
}

type keyResolver interface {
	KeyFromURL(rawURL string) (string, bool)
}

func (a *App) storeKey(url string) (string, bool) {
	if url == "" || a.Store == nil {
		return "", false
	}
	resolver, ok := a.Store.(keyResolver)
	if !ok {
		return "", false
	}
	return resolver.KeyFromURL(url)
}

func (a *App) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := a.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxExportImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxExportImageBytes {
		return nil, errors.New("image too large to export")
	}
	return data, nil
}

func (a *App) lessonID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid lesson id")
		return uuid.Nil, false
	}
	return id, true
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
