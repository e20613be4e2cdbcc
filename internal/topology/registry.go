package topology

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/topograph/core/internal/models"
)

// Builtins is the explicit registration table. New topologies are added
// here; nothing is discovered at runtime.
func Builtins() []Definition {
	return []Definition{
		Star{},
		Pipeline{},
		Hierarchy{},
		SmallWorld{},
		Mesh{},
	}
}

// Registry maps topology names to definitions. It is populated at startup
// and read-only afterwards, so lookups are safe from any goroutine. The zero
// value is an empty registry ready for use.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// NewDefault returns a registry holding every built-in topology.
func NewDefault() (*Registry, error) {
	r := NewRegistry()
	var errs error
	for _, def := range Builtins() {
		errs = multierr.Append(errs, r.Register(def))
	}
	if errs != nil {
		return nil, errs
	}
	return r, nil
}

// MustDefault is like NewDefault but panics on a broken built-in.
func MustDefault() *Registry {
	r, err := NewDefault()
	if err != nil {
		panic(err)
	}
	return r
}

// Register sanity-checks def and adds it. A name that is already taken is
// rejected.
func (r *Registry) Register(def Definition) error {
	if def == nil {
		return &models.RegistrationError{Err: errors.New("nil definition")}
	}

	meta := def.Meta()
	if err := SanityCheck(meta); err != nil {
		return &models.RegistrationError{Topology: meta.Name, Err: err}
	}

	if _, exists := r.defs[meta.Name]; exists {
		return &models.RegistrationError{Topology: meta.Name, Err: errors.New("duplicate topology name")}
	}

	if r.defs == nil {
		r.defs = make(map[string]Definition)
	}
	r.defs[meta.Name] = def
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the named definition or an *models.UnsupportedTopologyError
// listing the registered names.
func (r *Registry) Lookup(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &models.UnsupportedTopologyError{Name: name, Available: r.List()}
	}
	return def, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	names := maps.Keys(r.defs)
	slices.Sort(names)
	return names
}

// Definitions returns the registered definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	names := r.List()
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		out = append(out, r.defs[name])
	}
	return out
}

// SanityCheck validates registration metadata and reports every problem at
// once.
func SanityCheck(meta Meta) error {
	var errs error

	if strings.TrimSpace(meta.Name) == "" {
		errs = multierr.Append(errs, errors.New("missing name"))
	}
	if strings.TrimSpace(meta.Description) == "" {
		errs = multierr.Append(errs, errors.New("missing description"))
	}
	if meta.ParamsSchema == nil {
		errs = multierr.Append(errs, errors.New("missing params schema"))
	}

	if meta.Example.Topology != meta.Name {
		errs = multierr.Append(errs, fmt.Errorf("example IR topology %q does not match name %q", meta.Example.Topology, meta.Name))
	}
	if meta.Example.Nodes == nil {
		errs = multierr.Append(errs, errors.New("example IR has no nodes field"))
	}

	keys := maps.Keys(meta.DefaultParams)
	slices.Sort(keys)
	for _, key := range keys {
		if _, ok := meta.ParamsSchema[key]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("default param %q is not declared in the params schema", key))
		}
	}

	return errs
}
