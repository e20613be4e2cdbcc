package topology

import (
	"math/rand/v2"

	"github.com/topograph/core/internal/models"
)

const NameMesh = "p2p"

// Mesh connects every unordered pair once, from the earlier node to the later.
type Mesh struct{}

func (Mesh) Meta() Meta {
	return Meta{
		Name: NameMesh,
		Description: "A fully connected peer-to-peer mesh. " +
			"Every agent can reach every other agent directly, with no coordinator.",
		IRHints: `1) Every pair of nodes is connected exactly once.
2) There is no center and no hierarchy.
3) Suitable only for small groups: edges grow as N*(N-1)/2.`,
		ParamsSchema:  Schema{},
		DefaultParams: Params{},
		Example: models.IR{
			Topology: NameMesh,
			Nodes: []models.NodeGroup{
				{ID: "peer", Label: "Peer", Count: 5},
			},
		},
	}
}

func (Mesh) BuildEdges(nodes []models.FlatNode, _ Params, _ *rand.Rand) ([]models.Edge, error) {
	n := len(nodes)
	if n < 2 {
		return nil, nil
	}

	edges := make([]models.Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, edge(nodes[i].ID, nodes[j].ID))
		}
	}
	return edges, nil
}
