// Package models defines the core data structures shared by the synthesis engine.
// It includes the IR contract, the synthesized graph, and the error taxonomy.
package models

import (
	"encoding/json"
	"errors"

	"golang.org/x/exp/slices"
)

type Graph struct {
	Nodes []FlatNode `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

type FlatNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	ID     string `json:"id,omitempty"`
}

type Stats struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodesByType map[string]int `json:"nodes_by_type,omitempty"`
	Types       []string       `json:"types,omitempty"`
}

// Element is one entry of the flat, renderer-facing element list. Exactly one
// of Node and Edge is set.
type Element struct {
	Node *FlatNode
	Edge *Edge
}

type elementEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (e Element) IsEdge() bool {
	return e.Edge != nil
}

func (e Element) MarshalJSON() ([]byte, error) {
	switch {
	case e.Node != nil && e.Edge != nil:
		return nil, errors.New("element holds both a node and an edge")
	case e.Node != nil:
		return json.Marshal(struct {
			Data *FlatNode `json:"data"`
		}{e.Node})
	case e.Edge != nil:
		return json.Marshal(struct {
			Data *Edge `json:"data"`
		}{e.Edge})
	default:
		return nil, errors.New("empty element")
	}
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var env elementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return errors.New("element missing data")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &keys); err != nil {
		return err
	}

	if _, ok := keys["source"]; ok {
		var edge Edge
		if err := json.Unmarshal(env.Data, &edge); err != nil {
			return err
		}
		*e = Element{Edge: &edge}
		return nil
	}

	var node FlatNode
	if err := json.Unmarshal(env.Data, &node); err != nil {
		return err
	}
	*e = Element{Node: &node}
	return nil
}

// Elements returns nodes followed by edges, the order renderers expect.
func (g *Graph) Elements() []Element {
	out := make([]Element, 0, len(g.Nodes)+len(g.Edges))
	for i := range g.Nodes {
		out = append(out, Element{Node: &g.Nodes[i]})
	}
	for i := range g.Edges {
		out = append(out, Element{Edge: &g.Edges[i]})
	}
	return out
}

func (g *Graph) Stats() *Stats {
	stats := &Stats{
		TotalNodes:  len(g.Nodes),
		TotalEdges:  len(g.Edges),
		NodesByType: make(map[string]int),
	}

	for _, n := range g.Nodes {
		if _, seen := stats.NodesByType[n.Type]; !seen {
			stats.Types = append(stats.Types, n.Type)
		}
		stats.NodesByType[n.Type]++
	}
	slices.Sort(stats.Types)

	return stats
}

// NodeIndex maps every node id to its position in Nodes.
func (g *Graph) NodeIndex() map[string]int {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}
	return index
}
