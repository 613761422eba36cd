package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status           string `json:"status"`
	GeminiConfigured bool   `json:"gemini_configured"`
}

// Health mirrors the Flask backend health check.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "ok", GeminiConfigured: a.GeminiConfigured})
}

func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":           "ok",
		"content_provider": a.Service.ContentProvider(),
	})
}
