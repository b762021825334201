// Serves a JSON Schema of the wire types for frontend type generation.

package handlers

import (
	"context"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/jetview/jetview/internal/server/dto"
)

// SchemaResponse maps response type names to their JSON Schemas.
type SchemaResponse map[string]*jsonschema.Schema

// SchemaHandler reflects the dto types once and serves the result.
type SchemaHandler struct {
	once   sync.Once
	schema SchemaResponse
}

// Schema returns the JSON Schemas of the API's response types.
func (h *SchemaHandler) Schema(ctx context.Context, _ *dto.EmptyRequest) (*SchemaResponse, error) {
	h.once.Do(func() {
		r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
		h.schema = SchemaResponse{
			"SessionResponse": r.Reflect(&dto.SessionResponse{}),
			"UploadResponse":  r.Reflect(&dto.UploadResponse{}),
			"GridResponse":    r.Reflect(&dto.GridResponse{}),
			"RowsResponse":    r.Reflect(&dto.RowsResponse{}),
			"MatchResponse":   r.Reflect(&dto.MatchResponse{}),
			"HoverResponse":   r.Reflect(&dto.HoverResponse{}),
			"ErrorResponse":   r.Reflect(&dto.ErrorResponse{}),
		}
	})
	return &h.schema, nil
}
