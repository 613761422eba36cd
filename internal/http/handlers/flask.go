package handlers

import (
	"errors"
	"net/http"

	"lessonserver/internal/domain"
	"lessonserver/internal/domain/jsoncfg"
	"lessonserver/internal/middleware"
)

// The /api/* handlers keep the request and response bodies of the Flask
// backend so existing web clients keep working.

// GenerateLessonPreview generates content and images without persisting a lesson.
func (a *App) GenerateLessonPreview(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeContentRequest(w, r)
	if !ok {
		return
	}
	generated, images, err := a.Service.Preview(r.Context(), req)
	if err != nil {
		a.contentFailure(w, r, err)
		return
	}
	urls := domain.ImageURLs(images)
	items := make([]domain.Item, len(generated.Items))
	for i, item := range generated.Items {
		item.Image = urls[i]
		items[i] = item
	}
	a.json(w, http.StatusOK, jsoncfg.LessonContentResponse{
		Success:     true,
		Title:       generated.Title,
		Description: generated.Description,
		Items:       items,
	})
}

// GenerateLessonContent generates lesson text only.
func (a *App) GenerateLessonContent(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeContentRequest(w, r)
	if !ok {
		return
	}
	generated, err := a.Service.GenerateContent(r.Context(), req)
	if err != nil {
		a.contentFailure(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jsoncfg.LessonContentResponse{
		Success:     true,
		Title:       generated.Title,
		Description: generated.Description,
		Items:       generated.Items,
	})
}

func (a *App) decodeContentRequest(w http.ResponseWriter, r *http.Request) (domain.GenerationRequest, bool) {
	w.Header().Set(jsoncfg.SchemaHeader, jsoncfg.SchemaVersion)
	if err := jsoncfg.CheckSchema(r.Header.Get(jsoncfg.SchemaHeader)); err != nil {
		a.json(w, http.StatusBadRequest, jsoncfg.LessonContentResponse{Error: err.Error()})
		return domain.GenerationRequest{}, false
	}
	var body jsoncfg.GenerateLessonRequest
	if err := decode(w, r, &body); err != nil {
		a.json(w, http.StatusBadRequest, jsoncfg.LessonContentResponse{Error: err.Error()})
		return domain.GenerationRequest{}, false
	}
	if err := body.Validate(); err != nil {
		a.json(w, http.StatusBadRequest, jsoncfg.LessonContentResponse{Error: err.Error()})
		return domain.GenerationRequest{}, false
	}
	req := body.ToDomain()
	if req.Language == "" {
		req.Language = middleware.LocaleFromContext(r.Context())
	}
	return req, true
}

func (a *App) contentFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrTopicRequired) || errors.Is(err, domain.ErrInvalidItemCount) {
		status = http.StatusBadRequest
	} else {
		a.log(r).Error().Err(err).Msg("lesson content generation failed")
	}
	a.json(w, status, jsoncfg.LessonContentResponse{Error: err.Error()})
}
