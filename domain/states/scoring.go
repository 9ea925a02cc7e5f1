package states

import (
	"concepter-backend/domain/core/aggregates"
	"concepter-backend/domain/core/entities"
)

// OwnScore counts the diff entries attributed directly to one node
func OwnScore(diff GraphDiff, nodeID string) int {
	return len(diff[nodeID])
}

// PropagatedScores ranks every registered root by how much change the
// diff carries into its subtree: each root's score is its own entry
// count plus the entry counts of every node below it.
//
// Iteration order is deterministic: roots in registration order,
// children in edge order. A descendant shared between two subtrees is
// counted toward whichever root reaches it first in that order; the
// visited-set spans all roots, so no node is counted twice.
func PropagatedScores(store *aggregates.NodeStore, diff GraphDiff) map[string]int {
	visited := make(map[string]bool)
	scores := make(map[string]int)
	for _, root := range store.All() {
		scores[root.ID().String()] = propagate(root, diff, visited)
	}
	return scores
}

func propagate(n *entities.Node, diff GraphDiff, visited map[string]bool) int {
	id := n.ID().String()
	if visited[id] {
		return 0
	}
	visited[id] = true

	score := OwnScore(diff, id)
	for _, child := range n.Children() {
		score += propagate(child, diff, visited)
	}
	return score
}
