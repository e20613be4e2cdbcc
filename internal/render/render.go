// Package render serializes synthesized graphs for clients: the flat JSON
// element list, Mermaid flowcharts and Graphviz DOT.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/topograph/core/internal/models"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
)

// ParseFormat accepts a format name case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMermaid, FormatDOT:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, mermaid or dot)", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatMermaid:
		return "text/plain; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "application/json"
	}
}

// Write renders graph to w in the given format. pretty only affects JSON.
func Write(w io.Writer, graph *models.Graph, format Format, pretty bool) error {
	switch format {
	case FormatMermaid:
		_, err := io.WriteString(w, Mermaid(graph)+"\n")
		return err
	case FormatDOT:
		_, err := io.WriteString(w, DOT(graph)+"\n")
		return err
	default:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(graph.Elements()); err != nil {
			return fmt.Errorf("failed to encode graph: %w", err)
		}
		return nil
	}
}

// Mermaid renders a top-down flowchart. Node ids are reduced to characters
// Mermaid accepts unquoted; labels are quoted.
func Mermaid(graph *models.Graph) string {
	lines := []string{"graph TD"}

	for _, n := range graph.Nodes {
		lines = append(lines, fmt.Sprintf(`    %s["%s"]`, mermaidID(n.ID), mermaidLabel(n.Label)))
	}
	for _, e := range graph.Edges {
		lines = append(lines, fmt.Sprintf("    %s --> %s", mermaidID(e.Source), mermaidID(e.Target)))
	}

	return strings.Join(lines, "\n")
}

func mermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func mermaidLabel(label string) string {
	return strings.ReplaceAll(label, `"`, "#quot;")
}

// DOT renders a left-to-right Graphviz digraph with nodes filled in their
// type color.
func DOT(graph *models.Graph) string {
	lines := []string{"digraph G {", "  rankdir=LR;"}

	for _, n := range graph.Nodes {
		attrs := fmt.Sprintf("label=%s", dotQuote(n.Label))
		if n.Color != "" {
			attrs += fmt.Sprintf(", style=filled, fillcolor=%s", dotQuote(n.Color))
		}
		lines = append(lines, fmt.Sprintf("  %s [%s];", dotQuote(n.ID), attrs))
	}
	for _, e := range graph.Edges {
		lines = append(lines, fmt.Sprintf("  %s -> %s;", dotQuote(e.Source), dotQuote(e.Target)))
	}

	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
