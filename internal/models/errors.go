// Package models defines the core data structures shared by the synthesis engine.
// It includes the IR contract, the synthesized graph, and the error taxonomy.
package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema              = errors.New("invalid IR")
	ErrUnsupportedTopology = errors.New("unsupported topology")
	ErrConstraintViolation = errors.New("topology constraint violation")
	ErrRegistration        = errors.New("topology registration failed")
)

// SchemaError reports a malformed IR. Field is a dotted path such as
// "nodes[2].id" or "params.k".
type SchemaError struct {
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrSchema, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchema, e.Field, e.Msg)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func Schemaf(field, format string, args ...any) error {
	return &SchemaError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

type UnsupportedTopologyError struct {
	Name      string
	Available []string
}

func (e *UnsupportedTopologyError) Error() string {
	return fmt.Sprintf("%s: %q (available: %s)", ErrUnsupportedTopology, e.Name, strings.Join(e.Available, ", "))
}

func (e *UnsupportedTopologyError) Unwrap() error { return ErrUnsupportedTopology }

// ConstraintViolation is raised by a topology when the requested structure
// cannot be built. Source and Target identify the offending pair when there
// is one.
type ConstraintViolation struct {
	Topology string
	Source   string
	Target   string
	Msg      string
}

func (e *ConstraintViolation) Error() string {
	if e.Source != "" || e.Target != "" {
		return fmt.Sprintf("%s: %s: edge %s -> %s: %s", ErrConstraintViolation, e.Topology, e.Source, e.Target, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConstraintViolation, e.Topology, e.Msg)
}

func (e *ConstraintViolation) Unwrap() error { return ErrConstraintViolation }

type RegistrationError struct {
	Topology string
	Err      error
}

func (e *RegistrationError) Error() string {
	name := e.Topology
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s: %s: %v", ErrRegistration, name, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RegistrationError) Unwrap() []error { return []error{ErrRegistration, e.Err} }
