// Package synth turns an IR into a complete graph by expanding node groups
// and running the registered topology over them.
package synth

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/topograph/core/internal/models"
	"github.com/topograph/core/internal/parser"
	"github.com/topograph/core/internal/topology"
)

type Option func(*Synthesizer)

// WithLogger sets the logger used for synthesis diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(s *Synthesizer) {
		s.log = log
	}
}

// WithSeed fixes the random source so repeated calls on the same IR produce
// identical graphs.
func WithSeed(seed uint64) Option {
	return func(s *Synthesizer) {
		s.seed = seed
		s.seeded = true
	}
}

// WithMaxNodes bounds the number of flat nodes an IR may expand to. A
// non-positive n keeps parser.DefaultMaxNodes.
func WithMaxNodes(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxNodes = n
		}
	}
}

// Synthesizer is safe for concurrent use. Each call gets its own random
// source.
type Synthesizer struct {
	registry *topology.Registry
	log      logr.Logger
	seed     uint64
	seeded   bool
	maxNodes int
}

func New(registry *topology.Registry, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		registry: registry,
		log:      logr.Discard(),
		maxNodes: parser.DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seeded returns a copy of s that uses seed for its random source.
func (s *Synthesizer) Seeded(seed uint64) *Synthesizer {
	c := *s
	c.seed = seed
	c.seeded = true
	return &c
}

// Synthesize validates ir, expands its node groups and builds the edges of
// the named topology. A failed call returns no partial graph.
func (s *Synthesizer) Synthesize(ir *models.IR) (*models.Graph, error) {
	if err := parser.ValidateIRLimit(ir, s.maxNodes); err != nil {
		return nil, err
	}

	def, err := s.registry.Lookup(ir.Topology)
	if err != nil {
		return nil, err
	}

	nodes := parser.ExpandNodes(ir.Nodes)
	params := topology.MergeParams(def.Meta().DefaultParams, ir.Params)

	seed := s.seed
	if !s.seeded {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	log := s.log.WithValues("topology", ir.Topology)
	log.V(1).Info("building edges", "nodes", len(nodes), "seed", seed)

	edges, err := def.BuildEdges(nodes, params, rng)
	if err != nil {
		log.V(1).Info("topology rejected the IR", "error", err.Error())
		return nil, err
	}

	assignEdgeIDs(edges)

	if err := verifyEndpoints(ir.Topology, nodes, edges); err != nil {
		log.Error(err, "topology produced a dangling edge")
		return nil, err
	}

	log.V(1).Info("synthesized graph", "nodes", len(nodes), "edges", len(edges))

	if nodes == nil {
		nodes = []models.FlatNode{}
	}
	if edges == nil {
		edges = []models.Edge{}
	}
	return &models.Graph{Nodes: nodes, Edges: edges}, nil
}

// NodeOnly expands the node groups of ir without building any edges. It is
// the degraded result offered when synthesis fails. An IR over the node
// limit yields an empty graph.
func (s *Synthesizer) NodeOnly(ir *models.IR) *models.Graph {
	graph := &models.Graph{Nodes: []models.FlatNode{}, Edges: []models.Edge{}}
	if ir == nil || models.TotalCount(ir.Nodes) > s.maxNodes {
		return graph
	}
	if nodes := parser.ExpandNodes(ir.Nodes); len(nodes) > 0 {
		graph.Nodes = nodes
	}
	return graph
}

// assignEdgeIDs fills in "e_{idx}_{src}_to_{tgt}" for edges without an id,
// where idx is the 1-based position. A colliding id gets a numeric suffix.
func assignEdgeIDs(edges []models.Edge) {
	used := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if e.ID != "" {
			used[e.ID] = struct{}{}
		}
	}

	for i := range edges {
		if edges[i].ID != "" {
			continue
		}

		base := fmt.Sprintf("e_%d_%s_to_%s", i+1, edges[i].Source, edges[i].Target)
		id := base
		for n := 2; ; n++ {
			if _, taken := used[id]; !taken {
				break
			}
			id = base + "_" + strconv.Itoa(n)
		}

		edges[i].ID = id
		used[id] = struct{}{}
	}
}

func verifyEndpoints(name string, nodes []models.FlatNode, edges []models.Edge) error {
	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}

	for _, e := range edges {
		_, okSrc := known[e.Source]
		_, okTgt := known[e.Target]
		if !okSrc || !okTgt {
			return &models.ConstraintViolation{
				Topology: name,
				Source:   e.Source,
				Target:   e.Target,
				Msg:      "edge references an unknown node",
			}
		}
	}
	return nil
}
