// Package parser provides utilities for parsing and expanding IR input.
// It handles decoding, shape validation, and node group materialization.
package parser

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topograph/core/internal/models"
)

func TestParseIR(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		data := []byte(`{
			"topology": "hierarchy",
			"nodes": [
				{"id": "principal", "label": "Principal", "count": 1},
				{"id": "teacher", "label": "Teacher", "count": 3}
			],
			"params": {"levels": ["principal", "teacher"], "branch_factor": 3}
		}`)

		ir, err := ParseIR(data)

		require.NoError(t, err)
		assert.Equal(t, "hierarchy", ir.Topology)
		require.Len(t, ir.Nodes, 2)
		assert.Equal(t, models.NodeGroup{ID: "teacher", Label: "Teacher", Count: 3}, ir.Nodes[1])
		assert.Contains(t, ir.Params, "levels")
	})

	t.Run("count and label are optional", func(t *testing.T) {
		ir, err := ParseIR([]byte(`{"topology": "star", "nodes": [{"id": "hub"}]}`))

		require.NoError(t, err)
		assert.Equal(t, 0, ir.Nodes[0].Count)
		assert.Empty(t, ir.Nodes[0].Label)
		assert.Nil(t, ir.Params)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := ParseIR([]byte("  "))

		assert.ErrorIs(t, err, models.ErrSchema)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseIR([]byte(`{invalid json}`))

		assert.ErrorIs(t, err, models.ErrSchema)
		assert.Contains(t, err.Error(), "failed to unmarshal IR")
	})

	t.Run("trailing data after the document", func(t *testing.T) {
		for _, data := range []string{
			`{"topology": "p2p", "nodes": [{"id": "a"}]} {"topology": "star"} garbage`,
			`{"topology": "p2p", "nodes": [{"id": "a"}]} {"topology": "star", "nodes": []}`,
			`{"topology": "p2p", "nodes": [{"id": "a"}]} garbage`,
		} {
			_, err := ParseIR([]byte(data))

			var schemaErr *models.SchemaError
			require.ErrorAs(t, err, &schemaErr, data)
			assert.Contains(t, schemaErr.Msg, "unexpected data after IR document")
		}
	})

	t.Run("trailing whitespace is allowed", func(t *testing.T) {
		_, err := ParseIR([]byte("{\"topology\": \"p2p\", \"nodes\": [{\"id\": \"a\"}]}\n\t "))

		assert.NoError(t, err)
	})

	t.Run("counts that overflow are rejected", func(t *testing.T) {
		_, err := ParseIR([]byte(`{"topology": "star", "nodes": [
			{"id": "a", "count": 9223372036854775807},
			{"id": "b", "count": 9223372036854775807}
		]}`))

		var schemaErr *models.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "nodes[1].count", schemaErr.Field)
	})
}

func TestDecodeIRSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "not an object", input: `[1, 2]`, field: ""},
		{name: "missing topology", input: `{"nodes": []}`, field: "topology"},
		{name: "topology not a string", input: `{"topology": 5, "nodes": []}`, field: "topology"},
		{name: "blank topology", input: `{"topology": "  ", "nodes": []}`, field: "topology"},
		{name: "missing nodes", input: `{"topology": "star"}`, field: "nodes"},
		{name: "nodes not a list", input: `{"topology": "star", "nodes": {}}`, field: "nodes"},
		{name: "group not an object", input: `{"topology": "star", "nodes": ["hub"]}`, field: "nodes[0]"},
		{name: "missing id", input: `{"topology": "star", "nodes": [{"count": 1}]}`, field: "nodes[0].id"},
		{name: "id not a string", input: `{"topology": "star", "nodes": [{"id": 7}]}`, field: "nodes[0].id"},
		{name: "label not a string", input: `{"topology": "star", "nodes": [{"id": "a", "label": true}]}`, field: "nodes[0].label"},
		{name: "fractional count", input: `{"topology": "star", "nodes": [{"id": "a", "count": 1.5}]}`, field: "nodes[0].count"},
		{name: "negative count", input: `{"topology": "star", "nodes": [{"id": "a", "count": -1}]}`, field: "nodes[0].count"},
		{name: "duplicate ids", input: `{"topology": "star", "nodes": [{"id": "a"}, {"id": "b"}, {"id": "a"}]}`, field: "nodes[2].id"},
		{name: "params not an object", input: `{"topology": "star", "nodes": [], "params": [1]}`, field: "params"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIR([]byte(tt.input))

			var schemaErr *models.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.field, schemaErr.Field)
		})
	}
}

func TestValidateIR(t *testing.T) {
	t.Run("empty ids may repeat", func(t *testing.T) {
		ir := &models.IR{Topology: "star", Nodes: []models.NodeGroup{{ID: ""}, {ID: " "}, {ID: "a"}}}

		assert.NoError(t, ValidateIR(ir))
	})

	t.Run("nil IR", func(t *testing.T) {
		assert.ErrorIs(t, ValidateIR(nil), models.ErrSchema)
	})

	t.Run("total above the default limit", func(t *testing.T) {
		ir := &models.IR{Topology: "p2p", Nodes: []models.NodeGroup{{ID: "peer", Count: 4611686018427387904}}}

		var schemaErr *models.SchemaError
		require.ErrorAs(t, ValidateIR(ir), &schemaErr)
		assert.Equal(t, "nodes[0].count", schemaErr.Field)
		assert.Contains(t, schemaErr.Msg, "exceeds limit of 2000")
	})
}

func TestValidateIRLimit(t *testing.T) {
	groups := []models.NodeGroup{{ID: "a", Count: 3}, {ID: "b"}, {ID: "", Count: 50}, {ID: "c", Count: 2}}

	tests := []struct {
		name     string
		maxNodes int
		field    string
	}{
		{name: "exactly at the limit", maxNodes: 6, field: ""},
		{name: "one above the limit", maxNodes: 5, field: "nodes[3].count"},
		{name: "zero count still counts as one", maxNodes: 3, field: "nodes[1].count"},
		{name: "non-positive limit means the default", maxNodes: 0, field: ""},
		{name: "int range limit accepts small totals", maxNodes: math.MaxInt, field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIRLimit(&models.IR{Topology: "star", Nodes: groups}, tt.maxNodes)

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var schemaErr *models.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.field, schemaErr.Field)
		})
	}

	t.Run("overflowing sum is reported", func(t *testing.T) {
		ir := &models.IR{Topology: "star", Nodes: []models.NodeGroup{{ID: "a", Count: math.MaxInt}, {ID: "b", Count: 1}}}

		var schemaErr *models.SchemaError
		require.ErrorAs(t, ValidateIRLimit(ir, math.MaxInt), &schemaErr)
		assert.Equal(t, "nodes[1].count", schemaErr.Field)
		assert.Contains(t, schemaErr.Msg, "overflows")
	})
}

func TestParseIRYAML(t *testing.T) {
	data := []byte(`
topology: small_world
nodes:
  - id: student
    label: Student
    count: 12
params:
  node_type: student
  k: 4
  rewiring_prob: 0.2
`)

	ir, err := ParseIRYAML(data)

	require.NoError(t, err)
	assert.Equal(t, "small_world", ir.Topology)
	assert.Equal(t, 12, ir.Nodes[0].Count)
	assert.Equal(t, 4, ir.Params["k"])
	assert.Equal(t, 0.2, ir.Params["rewiring_prob"])

	_, err = ParseIRYAML([]byte("topology: [unclosed"))
	assert.ErrorIs(t, err, models.ErrSchema)

	_, err = ParseIRYAML([]byte("topology: p2p\nnodes:\n  - id: a\n---\ntopology: star\n"))
	assert.ErrorIs(t, err, models.ErrSchema)
}

func TestParseIRHCL(t *testing.T) {
	t.Run("blocks and params", func(t *testing.T) {
		src := []byte(`
topology = "pipeline"

node "ingest" {
  label = "Ingest"
}

node "worker" {
  label = "Worker"
  count = 3
}

params = {
  connections = {
    ingest = ["worker"]
  }
}
`)

		ir, err := ParseIRHCL("pipeline.hcl", src)

		require.NoError(t, err)
		assert.Equal(t, "pipeline", ir.Topology)
		require.Len(t, ir.Nodes, 2)
		assert.Equal(t, models.NodeGroup{ID: "ingest", Label: "Ingest"}, ir.Nodes[0])
		assert.Equal(t, 3, ir.Nodes[1].Count)
		assert.Equal(t, map[string]any{"ingest": []any{"worker"}}, ir.Params["connections"])
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseIRHCL("bad.hcl", []byte(`topology = `))

		assert.ErrorIs(t, err, models.ErrSchema)
	})

	t.Run("missing topology attribute", func(t *testing.T) {
		_, err := ParseIRHCL("bad.hcl", []byte(`node "a" {}`))

		assert.ErrorIs(t, err, models.ErrSchema)
	})

	t.Run("fractional count", func(t *testing.T) {
		_, err := ParseIRHCL("bad.hcl", []byte("topology = \"star\"\nnode \"a\" {\n  count = 1.5\n}\n"))

		var schemaErr *models.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "nodes[0].count", schemaErr.Field)
	})
}

func TestParseIRFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("dispatches on extension", func(t *testing.T) {
		paths := []string{
			write("a.json", `{"topology": "p2p", "nodes": [{"id": "peer", "count": 3}]}`),
			write("b.yaml", "topology: p2p\nnodes:\n  - id: peer\n    count: 3\n"),
			write("c.YML", "topology: p2p\nnodes:\n  - id: peer\n    count: 3\n"),
			write("d.hcl", "topology = \"p2p\"\nnode \"peer\" {\n  count = 3\n}\n"),
		}

		for _, path := range paths {
			ir, err := ParseIRFile(path)
			require.NoError(t, err, path)
			assert.Equal(t, "p2p", ir.Topology)
			assert.Equal(t, []models.NodeGroup{{ID: "peer", Count: 3}}, ir.Nodes)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := ParseIRFile(write("ir.txt", "{}"))

		assert.ErrorContains(t, err, "unsupported IR file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseIRFile(filepath.Join(dir, "missing.json"))

		assert.ErrorContains(t, err, "failed to read IR file")
	})
}
