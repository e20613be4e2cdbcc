package topology

import (
	"math/rand/v2"
	"sort"

	"github.com/topograph/core/internal/models"
)

const NamePipeline = "pipeline"

// Pipeline builds forward-only connections over the input node order.
type Pipeline struct{}

func (Pipeline) Meta() Meta {
	return Meta{
		Name: NamePipeline,
		Description: "An ordered execution pipeline supporting fan-in and fan-out. " +
			"Connections may be defined at the node level or the node-type level.",
		IRHints: `1) Nodes represent ORDERED execution stages.
2) Connections flow ONLY forward.
3) A connection source/target may be a node id (teacher_1) or a node type (teacher).
4) Type-level connections expand to every instance of the type.
5) Fan-in and fan-out are allowed; cycles are NOT.`,
		ParamsSchema: Schema{
			"connections": {Type: "dict", Description: "Mapping of source (node id or type) to target list."},
		},
		DefaultParams: Params{"connections": nil},
		Example: models.IR{
			Topology: NamePipeline,
			Nodes: []models.NodeGroup{
				{ID: "ingest", Label: "Ingest", Count: 1},
				{ID: "worker", Label: "Worker", Count: 3},
				{ID: "report", Label: "Report", Count: 1},
			},
			Params: map[string]any{
				"connections": map[string]any{
					"ingest": []any{"worker"},
					"worker": []any{"report"},
				},
			},
		},
	}
}

func (Pipeline) BuildEdges(nodes []models.FlatNode, params Params, _ *rand.Rand) ([]models.Edge, error) {
	if len(nodes) < 2 {
		return nil, nil
	}

	connections, err := params.StringListMap("connections")
	if err != nil {
		return nil, err
	}

	ordered := nodeIDs(nodes)

	if len(connections) == 0 {
		edges := make([]models.Edge, 0, len(ordered)-1)
		for i := 0; i < len(ordered)-1; i++ {
			edges = append(edges, edge(ordered[i], ordered[i+1]))
		}
		return edges, nil
	}

	index := make(map[string]int, len(ordered))
	for i, id := range ordered {
		index[id] = i
	}
	groups := groupByType(nodes)

	// A type name wins over an identical node id.
	resolve := func(key string) []string {
		if ids, ok := groups.ids[key]; ok {
			return ids
		}
		if _, ok := index[key]; ok {
			return []string{key}
		}
		return nil
	}

	var edges []models.Edge
	for _, srcKey := range sourceKeyOrder(connections, resolve, index) {
		srcNodes := resolve(srcKey)
		for _, tgtKey := range connections[srcKey] {
			for _, src := range srcNodes {
				for _, tgt := range resolve(tgtKey) {
					if index[tgt] <= index[src] {
						return nil, &models.ConstraintViolation{
							Topology: NamePipeline,
							Source:   src,
							Target:   tgt,
							Msg:      "edges must go forward only",
						}
					}
					edges = append(edges, edge(src, tgt))
				}
			}
		}
	}

	return edges, nil
}

// sourceKeyOrder sorts connection sources by the position of their first
// resolved node, so edge order follows the pipeline rather than map order.
// Unresolvable keys sort last, by name.
func sourceKeyOrder(connections map[string][]string, resolve func(string) []string, index map[string]int) []string {
	keys := make([]string, 0, len(connections))
	pos := make(map[string]int, len(connections))
	for k := range connections {
		keys = append(keys, k)
		pos[k] = len(index)
		if ids := resolve(k); len(ids) > 0 {
			pos[k] = index[ids[0]]
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if pos[keys[i]] != pos[keys[j]] {
			return pos[keys[i]] < pos[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
