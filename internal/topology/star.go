package topology

import (
	"math/rand/v2"

	"github.com/topograph/core/internal/models"
)

const NameStar = "star"

// Star connects one center to every other node. Non-center nodes are never
// connected to each other.
type Star struct{}

func (Star) Meta() Meta {
	return Meta{
		Name: NameStar,
		Description: "A star-shaped structure with a single central node. " +
			"All other nodes connect directly to the center, enabling fast coordination and centralized control.",
		IRHints: `1) Exactly ONE node acts as the CENTER.
2) All other nodes connect directly to the center.
3) No edges exist between non-center nodes.
4) The center may be inferred automatically (first role with a single instance).`,
		ParamsSchema: Schema{
			"center": {Type: "string", Description: "Node id or node type to use as the star center."},
		},
		DefaultParams: Params{"center": nil},
		Example: models.IR{
			Topology: NameStar,
			Nodes: []models.NodeGroup{
				{ID: "manager", Label: "Manager", Count: 1},
				{ID: "worker", Label: "Worker", Count: 6},
			},
			Params: map[string]any{"center": "manager"},
		},
	}
}

func (Star) BuildEdges(nodes []models.FlatNode, params Params, _ *rand.Rand) ([]models.Edge, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	centerParam, err := params.String("center")
	if err != nil {
		return nil, err
	}

	center := resolveCenter(nodes, groupByType(nodes), centerParam)

	edges := make([]models.Edge, 0, len(nodes)-1)
	for _, n := range nodes {
		if n.ID == center {
			continue
		}
		edges = append(edges, edge(center, n.ID))
	}
	return edges, nil
}

// resolveCenter tries, in order: a node type, an exact node id, the first
// type with a single instance, and finally the first node.
func resolveCenter(nodes []models.FlatNode, groups typeGroups, param string) string {
	if param != "" {
		if ids, ok := groups.ids[param]; ok {
			return ids[0]
		}
		for _, n := range nodes {
			if n.ID == param {
				return n.ID
			}
		}
	}

	for _, t := range groups.order {
		if ids := groups.ids[t]; len(ids) == 1 {
			return ids[0]
		}
	}

	return nodes[0].ID
}
