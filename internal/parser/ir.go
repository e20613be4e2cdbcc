// Package parser provides utilities for parsing and expanding IR input.
// It handles decoding, shape validation, and node group materialization.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/topograph/core/internal/models"
	"github.com/topograph/core/internal/topology"
)

// DefaultMaxNodes caps the number of flat nodes an IR may expand to.
const DefaultMaxNodes = 2000

// ParseIR decodes a single JSON IR document and validates its shape.
func ParseIR(data []byte) (*models.IR, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, models.Schemaf("", "empty IR data")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, models.Schemaf("", "failed to unmarshal IR: %v", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, models.Schemaf("", "unexpected data after IR document")
	}

	return DecodeIR(raw)
}

// ParseIRYAML decodes a single YAML IR document and validates its shape.
func ParseIRYAML(data []byte) (*models.IR, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, models.Schemaf("", "empty IR data")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, models.Schemaf("", "failed to unmarshal IR: %v", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, models.Schemaf("", "unexpected data after IR document")
	}

	return DecodeIR(raw)
}

// ParseIRFile reads an IR from disk, choosing the decoder by extension.
func ParseIRFile(path string) (*models.IR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read IR file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseIR(data)
	case ".yaml", ".yml":
		return ParseIRYAML(data)
	case ".hcl":
		return ParseIRHCL(path, data)
	default:
		return nil, fmt.Errorf("unsupported IR file extension %q", filepath.Ext(path))
	}
}

// DecodeIR converts a generic decoded document into a typed IR. Every shape
// problem is reported as a *models.SchemaError naming the offending field.
func DecodeIR(raw any) (*models.IR, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, models.Schemaf("", "IR must be an object")
	}

	ir := &models.IR{}

	topo, ok := doc["topology"]
	if !ok || topo == nil {
		return nil, models.Schemaf("topology", "required field missing")
	}
	name, ok := topo.(string)
	if !ok {
		return nil, models.Schemaf("topology", "must be a string")
	}
	ir.Topology = strings.TrimSpace(name)

	rawNodes, ok := doc["nodes"]
	if !ok || rawNodes == nil {
		return nil, models.Schemaf("nodes", "required field missing")
	}
	list, ok := rawNodes.([]any)
	if !ok {
		return nil, models.Schemaf("nodes", "must be a list")
	}

	ir.Nodes = make([]models.NodeGroup, 0, len(list))
	for i, item := range list {
		group, err := decodeNodeGroup(i, item)
		if err != nil {
			return nil, err
		}
		ir.Nodes = append(ir.Nodes, group)
	}

	if rawParams, ok := doc["params"]; ok && rawParams != nil {
		params, ok := rawParams.(map[string]any)
		if !ok {
			return nil, models.Schemaf("params", "must be an object")
		}
		ir.Params = params
	}

	if err := ValidateIRLimit(ir, math.MaxInt); err != nil {
		return nil, err
	}

	return ir, nil
}

func decodeNodeGroup(index int, item any) (models.NodeGroup, error) {
	field := fmt.Sprintf("nodes[%d]", index)

	obj, ok := item.(map[string]any)
	if !ok {
		return models.NodeGroup{}, models.Schemaf(field, "must be an object")
	}

	rawID, ok := obj["id"]
	if !ok {
		return models.NodeGroup{}, models.Schemaf(field+".id", "required field missing")
	}
	id, ok := rawID.(string)
	if !ok {
		return models.NodeGroup{}, models.Schemaf(field+".id", "must be a string")
	}

	group := models.NodeGroup{ID: strings.TrimSpace(id)}

	if rawLabel, ok := obj["label"]; ok && rawLabel != nil {
		label, ok := rawLabel.(string)
		if !ok {
			return models.NodeGroup{}, models.Schemaf(field+".label", "must be a string")
		}
		group.Label = label
	}

	if rawCount, ok := obj["count"]; ok && rawCount != nil {
		count, err := topology.AsInt(rawCount)
		if err != nil {
			return models.NodeGroup{}, models.Schemaf(field+".count", "%v", err)
		}
		group.Count = count
	}

	return group, nil
}

// ValidateIR checks the invariants a typed IR must hold before synthesis
// using DefaultMaxNodes as the node limit.
func ValidateIR(ir *models.IR) error {
	return ValidateIRLimit(ir, DefaultMaxNodes)
}

// ValidateIRLimit checks for a topology name, non-negative counts, unique
// non-empty group ids and an expanded node total of at most maxNodes.
// A non-positive maxNodes means DefaultMaxNodes.
func ValidateIRLimit(ir *models.IR, maxNodes int) error {
	if ir == nil {
		return models.Schemaf("", "IR is nil")
	}

	if strings.TrimSpace(ir.Topology) == "" {
		return models.Schemaf("topology", "must not be empty")
	}

	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	total := 0
	seen := make(map[string]int, len(ir.Nodes))
	for i, group := range ir.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if group.Count < 0 {
			return models.Schemaf(field+".count", "must be >= 0, got %d", group.Count)
		}

		id := strings.TrimSpace(group.ID)
		if id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			return models.Schemaf(field+".id", "duplicate group id %q (first at nodes[%d])", id, first)
		}
		seen[id] = i

		count := max(group.Count, 1)
		if count > maxNodes-total {
			if maxNodes == math.MaxInt {
				return models.Schemaf(field+".count", "total node count overflows")
			}
			return models.Schemaf(field+".count", "total node count exceeds limit of %d", maxNodes)
		}
		total += count
	}

	return nil
}
