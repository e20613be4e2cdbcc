// Package models defines the core data structures shared by the synthesis engine.
// It includes the IR contract, the synthesized graph, and the error taxonomy.
package models

import "math"

// IR is the topology-ready description handed over by the planner.
type IR struct {
	Topology string         `json:"topology" yaml:"topology"`
	Nodes    []NodeGroup    `json:"nodes" yaml:"nodes"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// NodeGroup describes Count identical-role instances. A zero Count is
// materialized as a single instance.
type NodeGroup struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// TotalCount is the number of flat nodes the groups expand to. The sum
// saturates at math.MaxInt.
func TotalCount(groups []NodeGroup) int {
	total := 0
	for _, g := range groups {
		if g.ID == "" {
			continue
		}
		count := max(g.Count, 1)
		if count > math.MaxInt-total {
			return math.MaxInt
		}
		total += count
	}
	return total
}
