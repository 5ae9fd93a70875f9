package schema

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapgen/internal/dag"
)

// Graph builds the dependency graph of a catalog: an edge B -> A for every
// foreign key in A referencing B. Self references add no edge, since the
// column is nullable and can be filled after the row exists.
func Graph(c *Catalog) (*dag.Graph, error) {
	g := dag.NewGraph()
	for _, e := range c.Entities {
		g.AddNode(e.Name, e)
	}
	for _, e := range c.Entities {
		for _, dep := range e.Dependencies() {
			if err := g.AddEdge(dep, e.Name); err != nil {
				return nil, fmt.Errorf("table %q: %w", e.Name, err)
			}
		}
	}
	return g, nil
}

// Resolve returns every table name ordered so that referenced tables precede
// the tables referencing them. Among tables whose dependencies are already
// ordered, the lexicographically smallest comes first, so the order is the
// same on every run. A cycle between distinct tables yields a
// *CyclicDependencyError.
func Resolve(c *Catalog) ([]string, error) {
	g, err := Graph(c)
	if err != nil {
		return nil, err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, cycleError(err)
	}
	return order, nil
}

// Levels groups tables by dependency depth; level 0 has no dependencies.
func Levels(c *Catalog) ([][]string, error) {
	g, err := Graph(c)
	if err != nil {
		return nil, err
	}
	levels, err := g.GetExecutionLevels()
	if err != nil {
		return nil, cycleError(err)
	}
	return levels, nil
}

func cycleError(err error) error {
	var ce *dag.CycleError
	if errors.As(err, &ce) {
		return &CyclicDependencyError{Tables: ce.Remaining, Cycle: ce.Cycle}
	}
	return err
}
