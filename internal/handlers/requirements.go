package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/loan-document-verifier/internal/services"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

type RequirementHandler struct {
	service services.RequirementService
	logger  *utils.Logger
}

func NewRequirementHandler(service services.RequirementService, logger *utils.Logger) *RequirementHandler {
	return &RequirementHandler{service: service, logger: logger}
}

func (h *RequirementHandler) EntityRequirements(w http.ResponseWriter, r *http.Request) {
	var req services.EntityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	profile, err := h.service.EntityRequirements(&req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, profile)
}

func (h *RequirementHandler) TaxRequirements(w http.ResponseWriter, r *http.Request) {
	var req services.TaxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	profile, err := h.service.TaxRequirements(&req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, profile)
}

func (h *RequirementHandler) IdentityDocuments(w http.ResponseWriter, r *http.Request) {
	status := mux.Vars(r)["status"]

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"citizenshipStatus": status,
		"documents":         h.service.IdentityDocuments(status),
	})
}

func (h *RequirementHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req services.ResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	result, err := h.service.Resolve(&req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, result)
}
