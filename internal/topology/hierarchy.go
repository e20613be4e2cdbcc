package topology

import (
	"fmt"
	"math/rand/v2"

	"github.com/topograph/core/internal/models"
)

const (
	NameHierarchy = "hierarchy"

	DefaultBranchFactor = 2
)

// rolePriority is the fallback level order when no levels are given.
var rolePriority = []string{"administrator", "principal", "teacher", "student"}

// Hierarchy builds a multi-level tree keyed by node type.
//
// A single level-0 node connects to every level-1 node and the tree continues
// from level 1. Several level-0 nodes form a coordination ring and then fan
// out to level 1 like any other parent level. Each parent takes children
// breadth-first up to its branch factor; children past the total capacity of
// a level stay unconnected.
type Hierarchy struct{}

func (Hierarchy) Meta() Meta {
	return Meta{
		Name: NameHierarchy,
		Description: "A tree-based structure with explicit hierarchy levels. " +
			"Each level may represent a different agent role, such as managers supervising workers or teachers supervising students.",
		IRHints: `1) Nodes are organized into LEVELS; level 0 is the ROOT role.
2) If level 0 has ONE node, it connects to ALL nodes in level 1.
3) If level 0 has MULTIPLE nodes, they form a circular coordination ring.
4) Each level i connects ONLY to level i+1; each child has exactly ONE parent.
5) No cycles below level 0; leaves appear only at the last level.`,
		ParamsSchema: Schema{
			"levels":        {Type: "list", Description: "Ordered list of node group ids, root level first."},
			"branch_factor": {Type: "int|list", Description: "Fan-out per level transition (length = len(levels) - 1)."},
		},
		DefaultParams: Params{
			"levels":        nil,
			"branch_factor": DefaultBranchFactor,
		},
		Example: models.IR{
			Topology: NameHierarchy,
			Nodes: []models.NodeGroup{
				{ID: "principal", Label: "Principal", Count: 1},
				{ID: "teacher", Label: "Teacher", Count: 5},
				{ID: "student", Label: "Student", Count: 100},
			},
			Params: map[string]any{
				"levels":        []any{"principal", "teacher", "student"},
				"branch_factor": []any{5, 20},
			},
		},
	}
}

func (Hierarchy) BuildEdges(nodes []models.FlatNode, params Params, _ *rand.Rand) ([]models.Edge, error) {
	groups := groupByType(nodes)

	levels, err := params.StringList("levels")
	if err != nil {
		return nil, err
	}

	if len(levels) == 0 {
		for _, role := range rolePriority {
			if groups.has(role) {
				levels = append(levels, role)
			}
		}
	} else {
		for _, level := range levels {
			if !groups.has(level) {
				return nil, &models.ConstraintViolation{
					Topology: NameHierarchy,
					Msg:      fmt.Sprintf("level %q does not name any node group", level),
				}
			}
		}
	}

	if len(levels) == 0 {
		return nil, nil
	}

	fanout, err := branchFactors(params, len(levels)-1)
	if err != nil {
		return nil, err
	}

	var edges []models.Edge

	roots := groups.ids[levels[0]]
	var firstLevel []string
	if len(levels) > 1 {
		firstLevel = groups.ids[levels[1]]
	}

	startLevel := 0
	switch {
	case len(roots) == 1:
		for _, child := range firstLevel {
			edges = append(edges, edge(roots[0], child))
		}
		startLevel = 1
	case len(roots) > 1:
		for i := range roots {
			edges = append(edges, edge(roots[i], roots[(i+1)%len(roots)]))
		}
	}

	for i := startLevel; i < len(levels)-1; i++ {
		parents := groups.ids[levels[i]]
		children := groups.ids[levels[i+1]]

		next := 0
		for _, p := range parents {
			for range fanout[i] {
				if next >= len(children) {
					break
				}
				edges = append(edges, edge(p, children[next]))
				next++
			}
		}
	}

	return edges, nil
}

// branchFactors normalizes branch_factor to one value per level transition.
// A scalar is broadcast; a short list is padded with DefaultBranchFactor.
func branchFactors(params Params, transitions int) ([]int, error) {
	values, scalar, err := params.IntList("branch_factor")
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		if v < 0 {
			return nil, models.Schemaf("params.branch_factor", "element %d must be >= 0, got %d", i, v)
		}
	}

	out := make([]int, transitions)
	for i := range out {
		switch {
		case scalar:
			out[i] = values[0]
		case i < len(values):
			out[i] = values[i]
		default:
			out[i] = DefaultBranchFactor
		}
	}
	return out, nil
}
