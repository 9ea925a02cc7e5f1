package valueobjects

import (
	"encoding/json"
	"strings"
)

// Position describes the role an edge's child plays relative to its
// parent ("supports", "blocks", ...). The wire form is either a bare
// label string or a structured object carrying a description and an
// optional embedding vector; both decode into this type.
type Position struct {
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Embedding   []float64 `json:"embedding,omitempty"`
}

// PositionFromLabel creates a position with only a label set
func PositionFromLabel(label string) Position {
	return Position{Label: label}
}

// IsZero checks if the position carries no information
func (p Position) IsZero() bool {
	return p.Label == "" && p.Description == "" && len(p.Embedding) == 0
}

// Normalized returns the canonical label-only form used for equality
// comparison: descriptions and embeddings never participate in diffs.
func (p Position) Normalized() Position {
	return Position{Label: strings.TrimSpace(p.Label)}
}

// Equals compares two positions in normalized form
func (p Position) Equals(other Position) bool {
	return p.Normalized().Label == other.Normalized().Label
}

// Clone returns a deep copy of the position
func (p Position) Clone() Position {
	out := Position{Label: p.Label, Description: p.Description}
	if p.Embedding != nil {
		out.Embedding = make([]float64, len(p.Embedding))
		copy(out.Embedding, p.Embedding)
	}
	return out
}

// UnmarshalJSON accepts both the bare-string and the structured form
func (p *Position) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*p = Position{Label: label}
		return nil
	}

	type positionObject Position
	var obj positionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Position(obj)
	return nil
}
