package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the Fortivus REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	userID     uuid.UUID
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. Requests
// are issued as the given user.
func NewHTTPClient(baseURL string, userID uuid.UUID) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, as uuid.UUID) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if as == uuid.Nil {
		as = c.userID
	}
	req.Header.Set("X-User-ID", as.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, nameSubstring string, limit int) ([]models.Exercise, error) {
	params := url.Values{}
	params.Set("q", nameSubstring)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/exercises", params, uuid.Nil)
	if err != nil {
		return nil, err
	}

	var rows []models.Exercise
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error) {
	body, err := c.get(ctx, "/api/v1/templates", nil, ownerID)
	if err != nil {
		return nil, err
	}

	var rows []models.WorkoutTemplate
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode templates: %w", err)
	}
	return rows, nil
}

// templateDetail is the REST envelope for a template with its entries.
type templateDetail struct {
	Template  *models.WorkoutTemplate   `json:"template"`
	Exercises []models.TemplateExercise `json:"exercises"`
}

func (c *HTTPClient) GetTemplate(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutTemplate, error) {
	detail, err := c.templateDetail(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return detail.Template, nil
}

func (c *HTTPClient) QueryTemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error) {
	detail, err := c.templateDetail(ctx, templateID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return detail.Exercises, nil
}

func (c *HTTPClient) templateDetail(ctx context.Context, id, ownerID uuid.UUID) (*templateDetail, error) {
	body, err := c.get(ctx, "/api/v1/templates/"+id.String(), nil, ownerID)
	if err != nil {
		return nil, err
	}

	var detail templateDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode template: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id, ownerID uuid.UUID) (*models.WorkoutSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+id.String(), nil, ownerID)
	if err != nil {
		return nil, err
	}

	var s models.WorkoutSession
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return &s, nil
}

func (c *HTTPClient) QueryPersonalRecords(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PersonalRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/records", params, ownerID)
	if err != nil {
		return nil, err
	}

	var rows []models.PersonalRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/leaderboard", params, uuid.Nil)
	if err != nil {
		return nil, err
	}

	var rows []storage.LeaderboardEntry
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode leaderboard: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	body, err := c.get(ctx, "/api/v1/streak", nil, userID)
	if err != nil {
		return 0, err
	}

	var resp struct {
		StreakDays int `json:"streak_days"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("httpclient: decode streak: %w", err)
	}
	return resp.StreakDays, nil
}
