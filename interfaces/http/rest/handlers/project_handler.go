package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"concepter-backend/application/services"
	"concepter-backend/pkg/common"
	"concepter-backend/pkg/utils"
)

// ProjectHandler handles whole-graph persistence HTTP requests
type ProjectHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service *services.GraphService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// ExportNodesRequest names the nodes to export
type ExportNodesRequest struct {
	NodeIDs []string `json:"node_ids" validate:"required,min=1,dive,required"`
}

// SetStateVariableRequest writes one project-scoped variable
type SetStateVariableRequest struct {
	Value interface{} `json:"value"`
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListProjects(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string][]string{"projects": names})
}

// SaveProject handles PUT /projects/{projectName}
func (h *ProjectHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "projectName")
	if err := h.service.SaveProject(r.Context(), name); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "saved", "project": name})
}

// LoadProject handles POST /projects/{projectName}/load; the current
// graph is replaced wholesale
func (h *ProjectHandler) LoadProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "projectName")
	count, err := h.service.LoadProject(r.Context(), name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"project": name, "nodes": count})
}

// ImportProject handles POST /projects/{projectName}/import; stored
// nodes extend the current graph instead of replacing it
func (h *ProjectHandler) ImportProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "projectName")
	count, err := h.service.ImportProject(r.Context(), name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"project": name, "imported": count})
}

// DeleteProject handles DELETE /projects/{projectName}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "projectName")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExportNodes handles POST /export, returning self-contained records
// for the named nodes
func (h *ProjectHandler) ExportNodes(w http.ResponseWriter, r *http.Request) {
	var req ExportNodesRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	records, err := h.service.ExportNodes(req.NodeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, records)
}

// GetStateVariable handles GET /variables/{key}
func (h *ProjectHandler) GetStateVariable(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok := h.service.StateVariable(key)
	if !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Variable not found: "+key)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"key": key, "value": value})
}

// SetStateVariable handles PUT /variables/{key}
func (h *ProjectHandler) SetStateVariable(w http.ResponseWriter, r *http.Request) {
	var req SetStateVariableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	key := chi.URLParam(r, "key")
	h.service.SetStateVariable(key, req.Value)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"key": key, "value": req.Value})
}
