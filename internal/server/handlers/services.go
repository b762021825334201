// Defines shared service dependencies for handlers.

package handlers

import (
	"github.com/jetview/jetview/internal/config"
	"github.com/jetview/jetview/internal/server/ratelimit"
	"github.com/jetview/jetview/internal/session"
	"github.com/jetview/jetview/internal/storage/laststore"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Store    *laststore.Store
	Sessions *session.Manager
}

// Config holds configuration values needed by handlers.
type Config struct {
	Limits  config.Limits
	Version string
	// JWTSecret signs session tokens. Generated per process start: the
	// viewer holds one in-memory session, so tokens never need to outlive
	// the process.
	JWTSecret []byte
	// UploadLimiter rate-limits file uploads per client IP. May be nil.
	UploadLimiter *ratelimit.Limiter
}
