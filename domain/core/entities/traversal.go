package entities

// Traversal helpers shared by node methods, the store's dedup/rekey
// passes and the change scorer. All walks are cycle-safe through a
// visited-set and bounded by an explicit depth cap; cycles are a
// tolerated part of the model and must never hang a traversal.

// Walk applies fn to n and every node reachable from it through edges,
// pre-order, visiting each node at most once and descending at most
// maxDepth levels below n.
func Walk(n *Node, maxDepth int, fn func(*Node)) {
	walk(n, maxDepth, 0, make(map[*Node]bool), fn)
}

func walk(n *Node, maxDepth, depth int, visited map[*Node]bool, fn func(*Node)) {
	if n == nil || depth > maxDepth || visited[n] {
		return
	}
	visited[n] = true
	fn(n)
	for _, e := range n.edges {
		walk(e.child, maxDepth, depth+1, visited, fn)
	}
}

// Reachable returns every node reachable from roots within maxDepth,
// in deterministic discovery order: roots in the given order, then each
// root's subtree pre-order. Nodes referenced only through edges (not in
// the roots list) are included.
func Reachable(roots []*Node, maxDepth int) []*Node {
	visited := make(map[*Node]bool)
	var out []*Node
	for _, root := range roots {
		walk(root, maxDepth, 0, visited, func(n *Node) {
			out = append(out, n)
		})
	}
	return out
}
