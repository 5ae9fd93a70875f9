// Package dag provides the directed acyclic graph used to order tables by
// their foreign-key dependencies. Ordering is deterministic: among the nodes
// whose dependencies are satisfied, the lexicographically smallest goes first.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Node represents a node in the DAG.
type Node struct {
	// ID is the unique identifier (table name)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph is a directed graph where an edge parent -> child means the child
// depends on the parent.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// CycleError is returned when the graph cannot be fully ordered.
type CycleError struct {
	// Remaining holds the nodes left unordered, sorted.
	Remaining []string
	// Cycle is one concrete cycle among Remaining, first node repeated at the end.
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("cycle detected: %s", strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("cycle detected among: %s", strings.Join(e.Remaining, ", "))
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph, replacing its data if it already exists.
func (g *Graph) AddNode(id string, data any) {
	if n, exists := g.nodes[id]; exists {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from parent to child (child depends on parent).
// Duplicate edges are ignored; self-loops are rejected.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	if !slices.Contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the sorted parents (dependencies) of a node.
func (g *Graph) GetParents(id string) []string {
	return sortedCopy(g.parents[id])
}

// GetChildren returns the sorted children (dependents) of a node.
func (g *Graph) GetChildren(id string) []string {
	return sortedCopy(g.edges[id])
}

// NodeIDs returns all node IDs, sorted.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// findCycle returns one cycle path among ids, visiting them in order.
func (g *Graph) findCycle(ids []string) []string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(ids))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = onStack
		stack = append(stack, id)
		for _, child := range g.GetChildren(id) {
			switch state[child] {
			case onStack:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			case unvisited:
				if dfs(child) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	for _, id := range ids {
		if state[id] == unvisited && dfs(id) {
			return cycle
		}
	}
	return nil
}

// TopologicalSort returns node IDs with every parent before its children.
//
// The remaining nodes are scanned in lexicographic order and the first one
// whose parents are all ordered is taken; the scan then restarts. When a full
// scan makes no progress a *CycleError naming the remaining nodes is returned.
func (g *Graph) TopologicalSort() ([]string, error) {
	remaining := g.NodeIDs()
	placed := make(map[string]bool, len(remaining))
	order := make([]string, 0, len(remaining))

	for len(remaining) > 0 {
		next := -1
		for i, id := range remaining {
			if g.satisfied(id, placed) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &CycleError{
				Remaining: slices.Clone(remaining),
				Cycle:     g.findCycle(remaining),
			}
		}
		id := remaining[next]
		placed[id] = true
		order = append(order, id)
		remaining = slices.Delete(remaining, next, next+1)
	}
	return order, nil
}

func (g *Graph) satisfied(id string, placed map[string]bool) bool {
	for _, parent := range g.parents[id] {
		if !placed[parent] {
			return false
		}
	}
	return true
}

// GetExecutionLevels returns nodes grouped by depth.
// Level 0 contains nodes with no dependencies; a node at level N depends on at
// least one node at level N-1.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	level := make(map[string]int, len(order))
	maxLevel := -1
	for _, id := range order {
		l := 0
		for _, parent := range g.parents[id] {
			if level[parent]+1 > l {
				l = level[parent] + 1
			}
		}
		level[id] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for _, id := range order {
		levels[level[id]] = append(levels[level[id]], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// GetRoots returns nodes with no parents, sorted.
func (g *Graph) GetRoots() []string {
	var roots []string
	for _, id := range g.NodeIDs() {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	sort.Strings(out)
	return out
}
