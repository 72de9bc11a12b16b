package handlers

import (
	"time"

	"image-tagger/internal/workspace"
)

// Handlers serves the HTTP API over one workspace.
type Handlers struct {
	ws        *workspace.Workspace
	startTime time.Time
}

// New creates handlers for ws.
func New(ws *workspace.Workspace) *Handlers {
	return &Handlers{
		ws:        ws,
		startTime: time.Now(),
	}
}
