// Health check endpoint.

package handlers

import (
	"context"

	"github.com/jetview/jetview/internal/server/dto"
)

// HealthHandler reports server liveness.
type HealthHandler struct {
	Version string
}

// Health returns the server status.
func (h *HealthHandler) Health(ctx context.Context, _ *dto.EmptyRequest) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{Status: "ok", Version: h.Version}, nil
}
