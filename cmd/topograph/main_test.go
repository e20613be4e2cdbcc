// Package main is the topograph command-line tool. It synthesizes graphs from
// IR files (.json, .yaml, .yml or .hcl) and prints them as JSON, Mermaid or DOT.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/topograph/core/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	starJSON := writeFile(t, dir, "star.json", `{"topology": "star", "nodes": [{"id": "hub"}, {"id": "leaf", "count": 3}]}`)
	meshYAML := writeFile(t, dir, "mesh.yaml", "topology: p2p\nnodes:\n  - id: peer\n    count: 3\n")
	chainHCL := writeFile(t, dir, "chain.hcl", "topology = \"pipeline\"\nnode \"stage\" {\n  count = 3\n}\n")
	unknown := writeFile(t, dir, "unknown.json", `{"topology": "nonexistent", "nodes": [{"id": "a"}]}`)
	broken := writeFile(t, dir, "broken.json", `{invalid json}`)

	t.Run("single file prints the element list", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		err := run(&stdout, &stderr, []string{starJSON})

		require.NoError(t, err)
		var elements []models.Element
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &elements))
		assert.Len(t, elements, 4+3)
	})

	t.Run("several files print in argument order", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		err := run(&stdout, &stderr, []string{"-format", "mermaid", chainHCL, meshYAML, starJSON})

		require.NoError(t, err)
		out := stdout.String()
		first := strings.Index(out, "==> "+chainHCL)
		second := strings.Index(out, "==> "+meshYAML)
		third := strings.Index(out, "==> "+starJSON)
		require.True(t, first >= 0 && second > first && third > second, out)
		assert.Contains(t, out, "stage_1 --> stage_2")
		assert.Contains(t, out, "peer_1 --> peer_3")
	})

	t.Run("failures are collected and good files still print", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		err := run(&stdout, &stderr, []string{"-format", "dot", unknown, starJSON, broken})

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.Len(t, multierr.Errors(exitErr.Err), 2)
		assert.ErrorIs(t, err, models.ErrUnsupportedTopology)
		assert.ErrorIs(t, err, models.ErrSchema)
		assert.Contains(t, stdout.String(), `"hub_1" -> "leaf_1";`)
	})

	t.Run("seed makes output reproducible", func(t *testing.T) {
		sw := writeFile(t, dir, "sw.json", `{"topology": "small_world", "nodes": [{"id": "s", "count": 30}], "params": {"rewiring_prob": 0.6}}`)
		var first, second, stderr bytes.Buffer

		require.NoError(t, run(&first, &stderr, []string{"-seed", "99", sw}))
		require.NoError(t, run(&second, &stderr, []string{"-seed", "99", sw}))

		assert.Equal(t, first.String(), second.String())
	})

	t.Run("node limit rejects large IRs", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		err := run(&stdout, &stderr, []string{"-max-nodes", "3", starJSON, meshYAML})

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.ErrorIs(t, err, models.ErrSchema)
		assert.Len(t, multierr.Errors(exitErr.Err), 1)
		assert.Contains(t, stdout.String(), "==> "+meshYAML)
		assert.NotContains(t, stdout.String(), "==> "+starJSON)
	})

	t.Run("list describes topologies", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		require.NoError(t, run(&stdout, &stderr, []string{"-list"}))

		for _, name := range []string{"star", "pipeline", "hierarchy", "small_world", "p2p"} {
			assert.Contains(t, stdout.String(), "### "+name)
		}
	})
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no files", nil},
		{"unknown flag", []string{"--not-a-flag"}},
		{"unknown format", []string{"-format", "svg", "x.json"}},
		{"unknown log level", []string{"-log-level", "loud", "x.json"}},
		{"non-positive node limit", []string{"-max-nodes", "0", "x.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			err := run(&stdout, &stderr, tt.args)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}

	t.Run("help exits cleanly", func(t *testing.T) {
		var stdout, stderr bytes.Buffer

		require.NoError(t, run(&stdout, &stderr, []string{"-h"}))
		assert.Contains(t, stderr.String(), "Usage:")
	})
}
