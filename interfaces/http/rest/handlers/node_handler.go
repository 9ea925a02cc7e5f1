package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"concepter-backend/application/services"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
	"concepter-backend/pkg/common"
	"concepter-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	service *services.GraphService
	logger  *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(service *services.GraphService, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{service: service, logger: logger}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=concept project budget monthly_budget"`
	Name string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
}

// UpdateNodeRequest carries attribute updates for a node
type UpdateNodeRequest struct {
	Attributes map[string]interface{} `json:"attributes" validate:"required,min=1"`
}

// AddEdgeRequest represents the request body for linking two nodes
type AddEdgeRequest struct {
	ChildID  string                `json:"child_id" validate:"required"`
	Position valueobjects.Position `json:"position"`
}

// CloneNodeRequest selects shallow or subtree cloning
type CloneNodeRequest struct {
	Deep bool `json:"deep,omitempty"`
}

// MergeNodeRequest names the node to fold into the target
type MergeNodeRequest struct {
	SourceID string `json:"source_id" validate:"required"`
}

// GroupNodesRequest names the nodes to gather under a fresh parent
type GroupNodesRequest struct {
	NodeIDs []string `json:"node_ids" validate:"required,min=1,dive,required"`
}

// edgeView is the wire form of one edge
type edgeView struct {
	ChildID  string                `json:"child_id"`
	Position valueobjects.Position `json:"position"`
	Name     string                `json:"name"`
}

// nodeView is the wire form of one node
type nodeView struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	Name        string                 `json:"name"`
	Attributes  map[string]interface{} `json:"attributes"`
	Edges       []edgeView             `json:"edges"`
	ActiveState string                 `json:"active_state,omitempty"`
}

func viewOf(n *entities.Node) nodeView {
	view := nodeView{
		ID:          n.ID().String(),
		Kind:        n.Kind(),
		Name:        n.Name(),
		Attributes:  n.Attributes(),
		Edges:       []edgeView{},
		ActiveState: n.ActiveState(),
	}
	for _, e := range n.Edges() {
		view.Edges = append(view.Edges, edgeView{
			ChildID:  e.Child().ID().String(),
			Position: e.Position(),
			Name:     e.Child().Name(),
		})
	}
	return view
}

func viewsOf(nodes []*entities.Node) []nodeView {
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, viewOf(n))
	}
	return views
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	n := h.service.CreateNode(req.Kind, req.Name)
	common.RespondJSON(w, http.StatusCreated, viewOf(n))
}

// SearchNode handles GET /nodes/search?name=..., returning the first
// case-insensitive substring match
func (h *NodeHandler) SearchNode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Query parameter 'name' is required")
		return
	}

	n, err := h.service.FindByName(name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewOf(n))
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.GetNode(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewOf(n))
}

// ListNodes handles GET /nodes with pagination
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r)
	nodes := h.service.ListNodes()

	start, end := params.Bounds(len(nodes))
	common.RespondWithMeta(w, http.StatusOK, viewsOf(nodes[start:end]), &common.MetaInfo{
		Timestamp:  utils.NowRFC3339(),
		Pagination: params.Meta(len(nodes)),
	})
}

// UpdateNode handles PUT /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	for key, value := range req.Attributes {
		if err := h.service.UpdateAttribute(nodeID, key, value); err != nil {
			common.RespondAppError(w, err)
			return
		}
	}

	n, err := h.service.GetNode(nodeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewOf(n))
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteNode(chi.URLParam(r, "nodeID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CloneNode handles POST /nodes/{nodeID}/clone
func (h *NodeHandler) CloneNode(w http.ResponseWriter, r *http.Request) {
	var req CloneNodeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
			return
		}
	}

	clone, err := h.service.CloneNode(chi.URLParam(r, "nodeID"), req.Deep)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, viewOf(clone))
}

// MergeNode handles POST /nodes/{nodeID}/merge
func (h *NodeHandler) MergeNode(w http.ResponseWriter, r *http.Request) {
	var req MergeNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	targetID := chi.URLParam(r, "nodeID")
	if err := h.service.MergeNodes(targetID, req.SourceID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	n, err := h.service.GetNode(targetID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewOf(n))
}

// GroupNodes handles POST /nodes/group
func (h *NodeHandler) GroupNodes(w http.ResponseWriter, r *http.Request) {
	var req GroupNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	parent, err := h.service.GroupNodes(req.NodeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, viewOf(parent))
}

// AddEdge handles POST /nodes/{nodeID}/edges
func (h *NodeHandler) AddEdge(w http.ResponseWriter, r *http.Request) {
	var req AddEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	if err := h.service.AddEdge(chi.URLParam(r, "nodeID"), req.ChildID, req.Position); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"status": "linked"})
}

// GetEdge handles GET /nodes/{nodeID}/edges/{childID}
func (h *NodeHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	position, err := h.service.EdgePosition(chi.URLParam(r, "nodeID"), chi.URLParam(r, "childID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, position)
}

// UpdateEdge handles PUT /nodes/{nodeID}/edges/{childID}
func (h *NodeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var position valueobjects.Position
	if err := json.NewDecoder(r.Body).Decode(&position); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.SetEdgePosition(chi.URLParam(r, "nodeID"), chi.URLParam(r, "childID"), position); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveEdge handles DELETE /nodes/{nodeID}/edges/{childID}
func (h *NodeHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveEdge(chi.URLParam(r, "nodeID"), chi.URLParam(r, "childID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

// GetChildren handles GET /nodes/{nodeID}/children
func (h *NodeHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.service.Children(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewsOf(children))
}

// GetParents handles GET /nodes/{nodeID}/parents
func (h *NodeHandler) GetParents(w http.ResponseWriter, r *http.Request) {
	parents, err := h.service.Parents(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, viewsOf(parents))
}

// GetRelation handles GET /nodes/{nodeID}/relation/{otherID}
func (h *NodeHandler) GetRelation(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	otherID := chi.URLParam(r, "otherID")

	descendant, err := h.service.IsDescendant(nodeID, otherID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	closeRelation, err := h.service.AreCloseRelations(nodeID, otherID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"descendant_of":  descendant,
		"close_relation": closeRelation,
	})
}

// Deduplicate handles POST /maintenance/deduplicate
func (h *NodeHandler) Deduplicate(w http.ResponseWriter, r *http.Request) {
	removed := h.service.Deduplicate()
	common.RespondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Rekey handles POST /maintenance/rekey
func (h *NodeHandler) Rekey(w http.ResponseWriter, r *http.Request) {
	h.service.RekeyAll()
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "rekeyed"})
}
