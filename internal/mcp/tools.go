package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// limitArg clamps an optional limit parameter to a sane range.
func limitArg(req mcp.CallToolRequest, def int) int {
	n := req.GetInt("limit", def)
	if n < 1 || n > 200 {
		return def
	}
	return n
}

// requireUser extracts the authenticated user or reports the tool error.
func requireUser(ctx context.Context) (uuid.UUID, *mcp.CallToolResult) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return uuid.Nil, mcp.NewToolResultError("no authenticated user")
	}
	return uid, nil
}

// --- Tool definitions ---

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by name substring. Returns matching exercises with muscle group and equipment."),
	mcp.WithString("q", mcp.Required(), mcp.Description("Name substring to search for (e.g. 'squat', 'bench')")),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 20.")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List the user's workout templates, most recently updated first."),
)

var toolGetTemplate = mcp.NewTool("get_template",
	mcp.WithDescription("Get a workout template with its ordered exercise entries (sets, reps, rest)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template UUID")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get a workout session: status, start time, and duration once finished."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("The user's personal records (best weight per exercise), newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 50.")),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("Top users by experience points, with current streak lengths."),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 20.")),
)

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("The user's current training streak in consecutive days."),
)

// --- Tool handlers ---

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("q")
	if err != nil {
		return mcp.NewToolResultError("q parameter is required"), nil
	}

	rows, err := h.ds.SearchExercises(ctx, q, limitArg(req, 20))
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, fail := requireUser(ctx)
	if fail != nil {
		return fail, nil
	}

	rows, err := h.ds.ListTemplates(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, fail := requireUser(ctx)
	if fail != nil {
		return fail, nil
	}

	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid template id"), nil
	}

	t, err := h.ds.GetTemplate(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_template", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	entries, err := h.ds.QueryTemplateExercises(ctx, id)
	if err != nil {
		h.log.Error("mcp get_template entries", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"template":  t,
		"exercises": entries,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, fail := requireUser(ctx)
	if fail != nil {
		return fail, nil
	}

	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session id"), nil
	}

	sess, err := h.ds.GetSession(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sess)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, fail := requireUser(ctx)
	if fail != nil {
		return fail, nil
	}

	rows, err := h.ds.QueryPersonalRecords(ctx, uid, limitArg(req, 50))
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.Leaderboard(ctx, limitArg(req, 20))
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, fail := requireUser(ctx)
	if fail != nil {
		return fail, nil
	}

	days, err := h.ds.GetStreak(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]int{"streak_days": days})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
