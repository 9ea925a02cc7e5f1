package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"concepter-backend/application/services"
	"concepter-backend/domain/states"
	"concepter-backend/pkg/common"
	"concepter-backend/pkg/utils"
)

// StateHandler handles snapshot, diff and scoring HTTP requests
type StateHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

// NewStateHandler creates a new state handler
func NewStateHandler(service *services.GraphService, logger *zap.Logger) *StateHandler {
	return &StateHandler{service: service, logger: logger}
}

// SwitchStateRequest names the snapshot to make current
type SwitchStateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// RenameStateRequest rekeys a stored snapshot
type RenameStateRequest struct {
	NewName string `json:"new_name" validate:"required,min=1,max=200"`
}

// CompareStatesRequest names the two snapshots to diff
type CompareStatesRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// DiffRequest carries a graph diff to replay or undo
type DiffRequest struct {
	Diff states.GraphDiff `json:"diff" validate:"required,min=1"`
}

// SwitchState handles PUT /nodes/{nodeID}/states/active
func (h *StateHandler) SwitchState(w http.ResponseWriter, r *http.Request) {
	var req SwitchStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	if err := h.service.SwitchState(chi.URLParam(r, "nodeID"), req.Name); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"active_state": req.Name})
}

// ListStates handles GET /nodes/{nodeID}/states
func (h *StateHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListStates(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string][]string{"states": names})
}

// RemoveState handles DELETE /nodes/{nodeID}/states/{stateName}
func (h *StateHandler) RemoveState(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveState(chi.URLParam(r, "nodeID"), chi.URLParam(r, "stateName")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// RenameState handles PUT /nodes/{nodeID}/states/{stateName}
func (h *StateHandler) RenameState(w http.ResponseWriter, r *http.Request) {
	var req RenameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	if err := h.service.RenameState(chi.URLParam(r, "nodeID"), chi.URLParam(r, "stateName"), req.NewName); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// ClearStates handles DELETE /nodes/{nodeID}/states
func (h *StateHandler) ClearStates(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearStates(chi.URLParam(r, "nodeID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// CompareStates handles POST /nodes/{nodeID}/states/compare
func (h *StateHandler) CompareStates(w http.ResponseWriter, r *http.Request) {
	var req CompareStatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	diff, err := h.service.CompareStates(chi.URLParam(r, "nodeID"), req.Source, req.Target)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, diff)
}

// CompareWithState handles GET /nodes/{nodeID}/states/{stateName}/diff,
// diffing the node's live edges against the stored snapshot
func (h *StateHandler) CompareWithState(w http.ResponseWriter, r *http.Request) {
	diff, err := h.service.CompareWithState(chi.URLParam(r, "nodeID"), chi.URLParam(r, "stateName"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, diff)
}

// ApplyDiff handles POST /diffs/apply
func (h *StateHandler) ApplyDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	h.service.ApplyDiff(req.Diff)
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// RevertDiff handles POST /diffs/revert
func (h *StateHandler) RevertDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	h.service.RevertDiff(req.Diff)
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "reverted"})
}

// ScoreDiff handles POST /diffs/scores, ranking stored nodes by how much
// of the diff lands in their subtrees
func (h *StateHandler) ScoreDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]map[string]int{"scores": h.service.ScoreChanges(req.Diff)})
}
