// Handles session endpoints: table selection, row paging, value matching.

package handlers

import (
	"context"
	"errors"

	"github.com/jetview/jetview/internal/server/dto"
	"github.com/jetview/jetview/internal/session"
)

// SessionHandler serves the endpoints scoped to the current session.
type SessionHandler struct {
	Svc *Services
	Cfg *Config
}

// GetSession describes the current session, minting a fresh token so a
// reloaded page can resume driving it. Loaded=false when no database is
// open.
func (h *SessionHandler) GetSession(ctx context.Context, _ *dto.EmptyRequest) (*dto.SessionResponse, error) {
	s := h.Svc.Sessions.Current()
	if s == nil {
		return &dto.SessionResponse{}, nil
	}
	token, err := MintSessionToken(h.Cfg.JWTSecret, s.ID())
	if err != nil {
		return nil, dto.InternalWithError("Failed to mint session token", err)
	}
	return &dto.SessionResponse{
		Loaded:   true,
		Session:  s.ID().String(),
		Token:    token,
		FileName: s.FileName(),
		Catalog:  catalogToResponse(s.Catalog()),
		Active:   s.ActiveTable(),
	}, nil
}

// SelectTable makes the named table the displayed one and returns its grid.
func (h *SessionHandler) SelectTable(ctx context.Context, s *session.Session, req *dto.SelectTableRequest) (*dto.GridResponse, error) {
	grid, err := s.SelectTable(ctx, req.Table)
	if err != nil {
		return nil, mapSessionError(req.Table, err)
	}
	return gridToResponse(grid), nil
}

// Rows returns one page of raw rows without changing the displayed table.
// The page size is clamped to the display ceiling.
func (h *SessionHandler) Rows(ctx context.Context, s *session.Session, req *dto.RowsRequest) (*dto.RowsResponse, error) {
	limit := req.Limit
	if limit == 0 || limit > h.Cfg.Limits.DisplayCeiling {
		limit = h.Cfg.Limits.DisplayCeiling
	}
	rows, err := s.FetchRows(ctx, req.Table, req.Offset, limit)
	if err != nil {
		return nil, mapSessionError(req.Table, err)
	}
	columns, _ := s.Columns(req.Table)
	return &dto.RowsResponse{Offset: req.Offset, Rows: rowsToCells(columns, rows)}, nil
}

// Match is the click path: scan the other tables for an equal value and,
// on a hit, navigate to the matching table.
func (h *SessionHandler) Match(ctx context.Context, s *session.Session, req *dto.MatchRequest) (*dto.MatchResponse, error) {
	res, err := s.ActivateCell(ctx, req.Table, valueFromCell(req.Value))
	if err != nil {
		return nil, mapSessionError(req.Table, err)
	}
	out := &dto.MatchResponse{Found: res.Found, RowIndex: res.RowIndex}
	if res.Found {
		out.Grid = gridToResponse(res.Grid)
	}
	return out, nil
}

// Hover is the hover path: advisory referencing-candidate tables.
func (h *SessionHandler) Hover(ctx context.Context, s *session.Session, req *dto.HoverRequest) (*dto.HoverResponse, error) {
	tables, throttled, err := s.HoverCell(ctx, req.Table, valueFromCell(req.Value))
	if err != nil {
		return nil, mapSessionError(req.Table, err)
	}
	if tables == nil {
		tables = []string{}
	}
	return &dto.HoverResponse{Tables: tables, Throttled: throttled}, nil
}

// ClearHover drops the hover highlight state.
func (h *SessionHandler) ClearHover(ctx context.Context, s *session.Session, _ *dto.EmptyRequest) (*dto.HoverResponse, error) {
	s.ClearHover()
	return &dto.HoverResponse{Tables: []string{}}, nil
}

// mapSessionError converts domain errors to their API shapes.
func mapSessionError(table string, err error) error {
	switch {
	case errors.Is(err, session.ErrTableNotFound):
		return dto.TableNotFound(table)
	case errors.Is(err, session.ErrStaleRequest):
		return dto.Stale(err.Error())
	default:
		return dto.InternalWithError("Session operation failed", err)
	}
}
