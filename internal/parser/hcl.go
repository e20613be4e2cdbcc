// Package parser provides utilities for parsing and expanding IR input.
// It handles decoding, shape validation, and node group materialization.
package parser

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/topograph/core/internal/models"
)

// hclIRFile is the HCL dialect of the IR:
//
//	topology = "star"
//	node "manager" {
//	  label = "Manager"
//	  count = 1
//	}
//	params = { center = "manager" }
type hclIRFile struct {
	Topology string          `hcl:"topology"`
	Nodes    []*hclNodeGroup `hcl:"node,block"`
	Params   hcl.Expression  `hcl:"params,optional"`
}

type hclNodeGroup struct {
	ID    string         `hcl:"id,label"`
	Label *string        `hcl:"label,optional"`
	Count hcl.Expression `hcl:"count,optional"`
}

// ParseIRHCL decodes an HCL IR document. The result goes through the same
// shape validation as JSON and YAML input.
func ParseIRHCL(filename string, src []byte) (*models.IR, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, models.Schemaf("", "failed to parse HCL IR: %s", diags.Error())
	}

	var parsed hclIRFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, models.Schemaf("", "failed to decode HCL IR: %s", diags.Error())
	}

	nodes := make([]any, 0, len(parsed.Nodes))
	for i, n := range parsed.Nodes {
		group := map[string]any{"id": n.ID}
		if n.Label != nil {
			group["label"] = *n.Label
		}

		count, err := evalNative(n.Count)
		if err != nil {
			return nil, models.Schemaf(fmt.Sprintf("nodes[%d].count", i), "%v", err)
		}
		if count != nil {
			group["count"] = count
		}

		nodes = append(nodes, group)
	}

	doc := map[string]any{
		"topology": parsed.Topology,
		"nodes":    nodes,
	}

	params, err := evalNative(parsed.Params)
	if err != nil {
		return nil, models.Schemaf("params", "%v", err)
	}
	if params != nil {
		doc["params"] = params
	}

	return DecodeIR(doc)
}

// evalNative evaluates a static expression without variables. A missing
// optional attribute evaluates to nil.
func evalNative(expr hcl.Expression) (any, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	return ctyToNative(val)
}

// ctyToNative recursively converts a cty.Value to plain Go values: strings,
// float64 numbers, bools, []any and map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
