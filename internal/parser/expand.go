// Package parser provides utilities for parsing and expanding IR input.
// It handles decoding, shape validation, and node group materialization.
package parser

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/topograph/core/internal/models"
)

// Palette is the fixed set of node colors. Its order is part of the output
// contract: changing it recolors every graph.
var Palette = [...]string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

// ColorForType picks a palette entry by FNV-1a (32-bit) over the UTF-8 bytes
// of the type string. The result is stable across processes and platforms.
func ColorForType(nodeType string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nodeType))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// ExpandNodes materializes every group into Count instances named
// "{id}_{i}" with i starting at 1. Groups with an empty id are skipped and a
// zero Count yields a single instance. Callers bound the total with
// ValidateIRLimit first.
func ExpandNodes(groups []models.NodeGroup) []models.FlatNode {
	flat := make([]models.FlatNode, 0, min(models.TotalCount(groups), DefaultMaxNodes))

	for _, group := range groups {
		baseID := strings.TrimSpace(group.ID)
		if baseID == "" {
			continue
		}

		label := strings.TrimSpace(group.Label)
		if label == "" {
			label = baseID
		}

		count := group.Count
		if count <= 0 {
			count = 1
		}

		color := ColorForType(baseID)
		for i := 1; i <= count; i++ {
			flat = append(flat, models.FlatNode{
				ID:    buildNodeID(baseID, i),
				Label: label,
				Type:  baseID,
				Color: color,
			})
		}
	}

	return flat
}

func buildNodeID(groupID string, index int) string {
	return fmt.Sprintf("%s_%d", groupID, index)
}
