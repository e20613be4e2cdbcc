// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"net/http"
	"strings"

	"github.com/topograph/core/internal/topology"
)

// TopologiesHandler lists the registered topologies. With format=text it
// returns the plain-text descriptions used in planner prompts.
func TopologiesHandler(registry *topology.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		defs := registry.Definitions()

		if r.URL.Query().Get("format") == "text" {
			blocks := make([]string, 0, len(defs))
			for _, def := range defs {
				blocks = append(blocks, topology.Describe(def))
			}

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(strings.Join(blocks, "\n\n") + "\n"))
			return
		}

		catalog := make([]topology.Meta, 0, len(defs))
		for _, def := range defs {
			catalog = append(catalog, def.Meta())
		}

		writeJSON(w, r, http.StatusOK, catalog, r.URL.Query().Get("pretty") == "true")
	}
}
