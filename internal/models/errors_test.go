// Package models defines the core data structures shared by the synthesis engine.
// It includes the IR contract, the synthesized graph, and the error taxonomy.
package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	err := Schemaf("nodes[1].id", "duplicate group id %q", "teacher")

	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "nodes[1].id")
	assert.Contains(t, err.Error(), `duplicate group id "teacher"`)

	var schemaErr *SchemaError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &schemaErr)
	assert.Equal(t, "nodes[1].id", schemaErr.Field)
}

func TestUnsupportedTopologyError(t *testing.T) {
	err := &UnsupportedTopologyError{Name: "nonexistent", Available: []string{"p2p", "star"}}

	assert.ErrorIs(t, err, ErrUnsupportedTopology)
	assert.Contains(t, err.Error(), `"nonexistent"`)
	assert.Contains(t, err.Error(), "p2p, star")
}

func TestConstraintViolation(t *testing.T) {
	t.Run("with pair", func(t *testing.T) {
		err := &ConstraintViolation{Topology: "pipeline", Source: "b_1", Target: "a_1", Msg: "edges must go forward only"}

		assert.ErrorIs(t, err, ErrConstraintViolation)
		assert.Contains(t, err.Error(), "b_1 -> a_1")
	})

	t.Run("without pair", func(t *testing.T) {
		err := &ConstraintViolation{Topology: "hierarchy", Msg: "level \"dean\" has no nodes"}

		assert.NotContains(t, err.Error(), "->")
		assert.Contains(t, err.Error(), "hierarchy")
	})
}

func TestRegistrationError(t *testing.T) {
	cause := errors.New("missing description")
	err := &RegistrationError{Topology: "ring", Err: cause}

	assert.ErrorIs(t, err, ErrRegistration)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ring")

	unnamed := &RegistrationError{Err: cause}
	assert.Contains(t, unnamed.Error(), "<unnamed>")
}
