// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/topograph/core/internal/models"
)

// Error kinds reported in ErrorResponse.Kind.
const (
	KindSchema      = "schema_error"
	KindUnsupported = "unsupported_topology"
	KindConstraint  = "constraint_violation"
	KindBadRequest  = "bad_request"
	KindTooLarge    = "request_too_large"
	KindInternal    = "internal_error"
)

type ErrorResponse struct {
	Error     string           `json:"error"`
	Kind      string           `json:"kind"`
	Field     string           `json:"field,omitempty"`
	Source    string           `json:"source,omitempty"`
	Target    string           `json:"target,omitempty"`
	Available []string         `json:"available,omitempty"`
	Fallback  []models.Element `json:"fallback,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// newErrorResponse maps a synthesis error to its HTTP status and body.
func newErrorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var (
		schemaErr   *models.SchemaError
		unsupported *models.UnsupportedTopologyError
		violation   *models.ConstraintViolation
	)

	switch {
	case errors.As(err, &schemaErr):
		resp.Kind = KindSchema
		resp.Field = schemaErr.Field
		return http.StatusBadRequest, resp
	case errors.As(err, &unsupported):
		resp.Kind = KindUnsupported
		resp.Available = unsupported.Available
		return http.StatusNotFound, resp
	case errors.As(err, &violation):
		resp.Kind = KindConstraint
		resp.Source = violation.Source
		resp.Target = violation.Target
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, models.ErrSchema):
		resp.Kind = KindSchema
		return http.StatusBadRequest, resp
	case errors.Is(err, models.ErrUnsupportedTopology):
		resp.Kind = KindUnsupported
		return http.StatusNotFound, resp
	case errors.Is(err, models.ErrConstraintViolation):
		resp.Kind = KindConstraint
		return http.StatusUnprocessableEntity, resp
	default:
		resp.Kind = KindInternal
		return http.StatusInternalServerError, resp
	}
}
