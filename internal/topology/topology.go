// Package topology holds the named edge-construction algorithms and the
// registry that exposes them.
//
// A Definition is stateless: BuildEdges must depend only on its arguments.
// Randomized algorithms draw exclusively from the *rand.Rand they are handed,
// so a fixed seed reproduces the same edges.
package topology

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/topograph/core/internal/models"
)

// Meta is the registration metadata every topology declares.
type Meta struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IRHints       string    `json:"ir_hints,omitempty"`
	ParamsSchema  Schema    `json:"params_schema"`
	DefaultParams Params    `json:"default_params"`
	Example       models.IR `json:"ir_example"`
}

// Definition is a named edge-construction algorithm.
type Definition interface {
	Meta() Meta
	// BuildEdges derives directed edges over nodes. params are already
	// merged over Meta().DefaultParams. Edges may leave ID empty.
	BuildEdges(nodes []models.FlatNode, params Params, rng *rand.Rand) ([]models.Edge, error)
}

// typeGroups keeps node ids grouped by type in first-appearance order.
type typeGroups struct {
	order []string
	ids   map[string][]string
}

func groupByType(nodes []models.FlatNode) typeGroups {
	g := typeGroups{ids: make(map[string][]string)}
	for _, n := range nodes {
		if _, ok := g.ids[n.Type]; !ok {
			g.order = append(g.order, n.Type)
		}
		g.ids[n.Type] = append(g.ids[n.Type], n.ID)
	}
	return g
}

func (g typeGroups) has(nodeType string) bool {
	_, ok := g.ids[nodeType]
	return ok
}

func nodeIDs(nodes []models.FlatNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func edge(source, target string) models.Edge {
	return models.Edge{Source: source, Target: target}
}

// Describe renders a definition as a plain-text block suitable for a planner
// prompt or a terminal listing.
func Describe(def Definition) string {
	meta := def.Meta()

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", meta.Name)
	fmt.Fprintf(&b, "Description:\n%s\n", meta.Description)

	if hints := strings.TrimSpace(meta.IRHints); hints != "" {
		fmt.Fprintf(&b, "\nRules:\n%s\n", hints)
	}

	if len(meta.ParamsSchema) > 0 {
		b.WriteString("\nParams:\n")
		names := make([]string, 0, len(meta.ParamsSchema))
		for name := range meta.ParamsSchema {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := meta.ParamsSchema[name]
			fmt.Fprintf(&b, "- %s (%s): %s", name, spec.Type, spec.Description)
			if dv, ok := meta.DefaultParams[name]; ok && dv != nil {
				fmt.Fprintf(&b, " [default: %v]", dv)
			}
			b.WriteString("\n")
		}
	}

	if example, err := json.MarshalIndent(meta.Example, "", "  "); err == nil {
		fmt.Fprintf(&b, "\nExample:\n%s\n", example)
	}

	return strings.TrimRight(b.String(), "\n")
}
