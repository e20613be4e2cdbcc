// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/topograph/core/internal/topology"
)

const ServiceName = "topograph-api"

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

var startTime = time.Now()

// HealthHandler reports liveness along with the registered topology names.
func HealthHandler(registry *topology.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Service:   ServiceName,
			Uptime:    time.Since(startTime).String(),
			Details: map[string]string{
				"go_version": runtime.Version(),
				"num_cpu":    strconv.Itoa(runtime.NumCPU()),
				"topologies": strings.Join(registry.List(), ","),
			},
		}

		writeJSON(w, r, http.StatusOK, response, false)
	}
}
