// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/topograph/core/internal/models"
	"github.com/topograph/core/internal/parser"
	"github.com/topograph/core/internal/render"
	"github.com/topograph/core/internal/synth"
)

// SynthesizeHandler accepts an IR body (JSON, or YAML when the content type
// says so) and responds with the synthesized graph.
//
// Query parameters: seed fixes the random source, format selects json,
// mermaid or dot, and pretty=true indents JSON. A failure after the IR was
// decoded carries the node-only graph as "fallback".
func SynthesizeHandler(s *synth.Synthesizer, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		log := zerolog.Ctx(r.Context())
		synthesizer := s
		query := r.URL.Query()
		pretty := query.Get("pretty") == "true"

		format, err := render.ParseFormat(query.Get("format"))
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: KindBadRequest}, pretty)
			return
		}

		if raw := query.Get("seed"); raw != "" {
			seed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "invalid seed: " + raw, Kind: KindBadRequest}, pretty)
				return
			}
			synthesizer = s.Seeded(seed)
		}

		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Kind: KindTooLarge}, pretty)
				return
			}
			writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: "failed to read body", Kind: KindBadRequest}, pretty)
			return
		}

		ir, err := decodeBody(r.Header.Get("Content-Type"), body)
		if err != nil {
			fail(w, r, synthesizer, err, nil, pretty)
			return
		}

		graph, err := synthesizer.Synthesize(ir)
		if err != nil {
			fail(w, r, synthesizer, err, ir, pretty)
			return
		}

		stats := graph.Stats()
		log.Debug().
			Str("topology", ir.Topology).
			Int("nodes", stats.TotalNodes).
			Int("edges", stats.TotalEdges).
			Strs("types", stats.Types).
			Msg("graph synthesized")

		w.Header().Set("Content-Type", format.ContentType())
		if err := render.Write(w, graph, format, pretty); err != nil {
			log.Error().Err(err).Msg("failed to write graph")
		}
	}
}

func decodeBody(contentType string, body []byte) (*models.IR, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return parser.ParseIRYAML(body)
	default:
		return parser.ParseIR(body)
	}
}

func fail(w http.ResponseWriter, r *http.Request, s *synth.Synthesizer, err error, ir *models.IR, pretty bool) {
	status, resp := newErrorResponse(err)

	if ir != nil {
		if fallback := s.NodeOnly(ir); len(fallback.Nodes) > 0 {
			resp.Fallback = fallback.Elements()
		}
	}

	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", resp.Kind).Int("status", status).Msg("synthesis failed")

	writeJSON(w, r, status, resp, pretty)
}
