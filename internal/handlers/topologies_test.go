// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topograph/core/internal/topology"
)

func TestTopologiesHandler(t *testing.T) {
	handler := TopologiesHandler(topology.MustDefault())

	t.Run("returns the catalog as JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/topologies", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var catalog []map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&catalog))
		require.Len(t, catalog, 5)

		names := make([]string, len(catalog))
		for i, entry := range catalog {
			names[i], _ = entry["name"].(string)
			assert.Contains(t, entry, "params_schema")
			assert.Contains(t, entry, "ir_example")
		}
		assert.Equal(t, []string{"hierarchy", "p2p", "pipeline", "small_world", "star"}, names)
	})

	t.Run("text format returns descriptions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/topologies?format=text", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "### star")
		assert.Contains(t, w.Body.String(), "### small_world")
	})

	t.Run("rejects POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/topologies", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
