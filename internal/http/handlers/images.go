package handlers

import (
	"net/http"

	"lessonserver/internal/domain"
	"lessonserver/internal/domain/jsoncfg"
)

// GenerateImages serves the cloud-function endpoint: one URL per requested
// item, "" for every item that could not be illustrated.
func (a *App) GenerateImages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(jsoncfg.SchemaHeader, jsoncfg.SchemaVersion)
	var req jsoncfg.GenerateImagesRequest
	if err := decode(w, r, &req); err != nil {
		a.json(w, http.StatusBadRequest, jsoncfg.GenerateImagesResponse{ImageURLs: []string{}, Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		a.json(w, http.StatusBadRequest, jsoncfg.GenerateImagesResponse{ImageURLs: []string{}, Error: err.Error()})
		return
	}
	results := a.Service.GenerateImages(r.Context(), req.Topic, req.DomainItems())
	a.json(w, http.StatusOK, jsoncfg.GenerateImagesResponse{ImageURLs: domain.ImageURLs(results)})
}
