package api

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ssargent/rollbook/pkg/service"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StudentRequest is the body of POST /students and PUT /students/{roll}.
// Roll and marks may be sent as JSON numbers or numeric strings; on PUT the
// roll comes from the path.
type StudentRequest struct {
	Roll  json.Number `json:"roll,omitempty"`
	Name  string      `json:"name"`
	Marks json.Number `json:"marks"`
}

// ReloadResponse reports what a reload read from storage
type ReloadResponse struct {
	Records int      `json:"records"`
	Skipped []string `json:"skipped,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
	Logger *slog.Logger
}

// Dispatcher executes shell commands against the roll book
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd service.Command) (*service.Result, error)
}
