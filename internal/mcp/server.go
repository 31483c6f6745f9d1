// Package mcp exposes training data to AI assistants over the Model Context
// Protocol: templates, personal records, sessions, and the leaderboard.
package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
// Returns uuid.Nil when no identity was set.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Fortivus", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Fortivus training data server. Query workout templates, personal records, sessions, streaks, and the XP leaderboard. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetTemplate, Handler: h.getTemplate},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetLeaderboard, Handler: h.getLeaderboard},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resLeaderboard, Handler: h.leaderboardResource},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resLeaderboard = mcp.NewResource(
	"fortivus://leaderboard",
	"XP Leaderboard",
	mcp.WithResourceDescription("Top users ranked by experience points, with streak lengths"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"fortivus://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises in the shared catalog with muscle groups and equipment"),
	mcp.WithMIMEType("application/json"),
)
