package topology

import (
	"math/rand/v2"

	"github.com/topograph/core/internal/models"
)

const (
	NameSmallWorld = "small_world"

	DefaultNeighbors    = 4
	DefaultRewiringProb = 0.1

	minSmallWorldNodes = 3
)

// SmallWorld is a Watts-Strogatz style ring lattice with random rewiring.
type SmallWorld struct{}

func (SmallWorld) Meta() Meta {
	return Meta{
		Name: NameSmallWorld,
		Description: "A small-world network with strong local clustering and a few " +
			"long-range shortcut connections, enabling efficient global reachability.",
		IRHints: `1) Nodes form local neighborhoods (high clustering).
2) Each node connects to its K nearest ring neighbors.
3) A small fraction of edges are rewired to random distant nodes.
4) Connections are peer-to-peer (no strict hierarchy).`,
		ParamsSchema: Schema{
			"node_type":     {Type: "string", Description: "Node type to apply the small-world structure to."},
			"k":             {Type: "int", Description: "Number of local neighbors per node (even number)."},
			"rewiring_prob": {Type: "float", Description: "Probability of rewiring an edge to a random node."},
		},
		DefaultParams: Params{
			"node_type":     nil,
			"k":             DefaultNeighbors,
			"rewiring_prob": DefaultRewiringProb,
		},
		Example: models.IR{
			Topology: NameSmallWorld,
			Nodes: []models.NodeGroup{
				{ID: "student", Label: "Student", Count: 100},
			},
			Params: map[string]any{
				"node_type":     "student",
				"k":             6,
				"rewiring_prob": 0.1,
			},
		},
	}
}

// BuildEdges links every eligible node to its k/2 forward ring neighbors. With
// probability rewiring_prob a link is redirected to a uniformly drawn node;
// a redirect that lands on the source is dropped. No random numbers are drawn
// when rewiring_prob is 0.
func (SmallWorld) BuildEdges(nodes []models.FlatNode, params Params, rng *rand.Rand) ([]models.Edge, error) {
	nodeType, err := params.String("node_type")
	if err != nil {
		return nil, err
	}
	k, err := params.Int("k", DefaultNeighbors)
	if err != nil {
		return nil, err
	}
	if k < 0 {
		return nil, models.Schemaf("params.k", "must be >= 0, got %d", k)
	}
	prob, err := params.Float("rewiring_prob", DefaultRewiringProb)
	if err != nil {
		return nil, err
	}
	if prob < 0 || prob > 1 {
		return nil, models.Schemaf("params.rewiring_prob", "must be within [0, 1], got %v", prob)
	}

	ids := nodeIDs(nodes)
	if nodeType != "" {
		ids = groupByType(nodes).ids[nodeType]
	}

	n := len(ids)
	if n < minSmallWorldNodes {
		return nil, nil
	}

	k = min(k, n-1)
	k -= k % 2
	if k == 0 {
		return nil, nil
	}

	if prob > 0 && rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	edges := make([]models.Edge, 0, n*k/2)
	for i, src := range ids {
		for j := 1; j <= k/2; j++ {
			tgt := ids[(i+j)%n]

			if prob > 0 && rng.Float64() < prob {
				tgt = ids[rng.IntN(n)]
				if tgt == src {
					continue
				}
			}

			edges = append(edges, edge(src, tgt))
		}
	}

	return edges, nil
}
