// Package serialization defines the persistence wire form for nodes
// and the two-pass load protocol: decode every node first, then resolve
// pending edges against the loaded id set.
package serialization

import (
	"time"

	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
	"concepter-backend/domain/core/valueobjects"
	"concepter-backend/domain/kinds"
	"concepter-backend/pkg/utils"
)

// EdgeRecord is one stored edge. Name caches the child's display name
// so listings can render without loading the child.
type EdgeRecord struct {
	ToID     string                `json:"to_id"`
	Position valueobjects.Position `json:"position"`
	Name     string                `json:"name,omitempty"`
}

// RelationshipRecord is one stored non-hierarchical link
type RelationshipRecord struct {
	SourceID string                `json:"source_id"`
	TargetID string                `json:"target_id"`
	Position valueobjects.Position `json:"position"`
}

// StateEntryRecord is one stored snapshot entry; handles never persist
type StateEntryRecord struct {
	ChildID  string                `json:"child_id"`
	Position valueobjects.Position `json:"position"`
}

// NodeRecord is the full stored form of one node
type NodeRecord struct {
	ID            string                        `json:"id"`
	Kind          string                        `json:"type"`
	Attributes    map[string]interface{}        `json:"attributes"`
	Edges         []EdgeRecord                  `json:"edges,omitempty"`
	Relationships []RelationshipRecord          `json:"relationships,omitempty"`
	AllStates     map[string][]StateEntryRecord `json:"all_states,omitempty"`
	ActiveState   string                        `json:"active_state,omitempty"`
}

// Encode converts a live node into its stored form. Date-valued
// attributes become ISO-8601 strings.
func Encode(n *entities.Node) NodeRecord {
	rec := NodeRecord{
		ID:          n.ID().String(),
		Kind:        n.Kind(),
		Attributes:  encodeAttributes(n.Attributes()),
		ActiveState: n.ActiveState(),
	}

	for _, e := range n.Edges() {
		rec.Edges = append(rec.Edges, EdgeRecord{
			ToID:     e.Child().ID().String(),
			Position: e.Position().Clone(),
			Name:     e.Child().Name(),
		})
	}
	// edges that never resolved still round-trip
	for _, p := range n.PendingEdges() {
		rec.Edges = append(rec.Edges, EdgeRecord{ToID: p.ToID, Position: p.Position.Clone()})
	}

	for _, rel := range n.Relationships() {
		rec.Relationships = append(rec.Relationships, RelationshipRecord{
			SourceID: rel.SourceID,
			TargetID: rel.TargetID,
			Position: rel.Position.Clone(),
		})
	}

	for _, name := range n.StateNames() {
		entries, _ := n.Snapshot(name)
		stored := make([]StateEntryRecord, 0, len(entries))
		for _, entry := range entries {
			stored = append(stored, StateEntryRecord{ChildID: entry.ChildID, Position: entry.Position.Clone()})
		}
		if rec.AllStates == nil {
			rec.AllStates = make(map[string][]StateEntryRecord)
		}
		rec.AllStates[name] = stored
	}
	return rec
}

// Decode rebuilds a node from its stored form, picking the constructor
// and resolver matching the stored kind. Every edge starts out pending;
// run ResolvePendingEdges once the whole node set is decoded.
func Decode(rec NodeRecord, registry *kinds.Registry) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(rec.ID)
	if err != nil {
		return nil, err
	}

	n := registry.Reconstruct(id, rec.Kind, decodeAttributes(rec.Attributes))

	for _, e := range rec.Edges {
		n.AddPendingEdge(e.ToID, e.Position.Clone())
	}
	for _, rel := range rec.Relationships {
		n.AddRelationship(entities.Relationship{SourceID: rel.SourceID, TargetID: rel.TargetID, Position: rel.Position.Clone()})
	}
	for name, stored := range rec.AllStates {
		entries := make([]entities.StateEntry, 0, len(stored))
		for _, entry := range stored {
			entries = append(entries, entities.NewStateEntry(entry.ChildID, nil, entry.Position.Clone()))
		}
		n.SetSnapshot(name, entries)
	}
	n.SetActiveState(rec.ActiveState)
	return n, nil
}

// ResolvePendingEdges turns pending edges into live edges wherever the
// target id is now registered. Edges whose target is still missing stay
// pending; they are not errors and they survive the next save.
func ResolvePendingEdges(store *aggregates.NodeStore, nodes []*entities.Node) {
	for _, n := range nodes {
		var unresolved []entities.PendingEdge
		edges := n.Edges()
		for _, p := range n.PendingEdges() {
			child := store.GetByID(p.ToID)
			if child == nil {
				unresolved = append(unresolved, p)
				continue
			}
			edges = append(edges, entities.NewEdge(child, p.Position.Clone()))
		}
		n.SetEdges(edges)
		n.SetPendingEdges(unresolved)
	}
}

// encodeAttributes deep-copies an attribute map for storage, rendering
// time values as ISO dates
func encodeAttributes(attrs valueobjects.Attributes) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		out[key] = encodeValue(value)
	}
	return out
}

func encodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return utils.FormatISODate(t)
	case map[string]interface{}:
		nested := make(map[string]interface{}, len(t))
		for k, inner := range t {
			nested[k] = encodeValue(inner)
		}
		return nested
	case []interface{}:
		nested := make([]interface{}, len(t))
		for i, inner := range t {
			nested[i] = encodeValue(inner)
		}
		return nested
	default:
		return v
	}
}

// decodeAttributes restores stored attributes, turning ISO date strings
// back into time values
func decodeAttributes(raw map[string]interface{}) valueobjects.Attributes {
	attrs := valueobjects.NewAttributes()
	for key, value := range raw {
		attrs[key] = decodeValue(value)
	}
	return attrs
}

func decodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		if len(t) == len(utils.ISODateFormat) {
			if parsed, err := time.Parse(utils.ISODateFormat, t); err == nil {
				return parsed
			}
		}
		return t
	case map[string]interface{}:
		nested := make(map[string]interface{}, len(t))
		for k, inner := range t {
			nested[k] = decodeValue(inner)
		}
		return nested
	case []interface{}:
		nested := make([]interface{}, len(t))
		for i, inner := range t {
			nested[i] = decodeValue(inner)
		}
		return nested
	default:
		return v
	}
}
