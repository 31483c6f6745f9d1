// Package planner calls the hosted plan-generation endpoint and validates
// its output before anything downstream consumes it.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fortivus/fortivus/internal/models"
)

// ProfileInput is what the generation endpoint is invoked with.
type ProfileInput struct {
	Goals        string `json:"goals"`
	CurrentStats string `json:"current_stats"`
	Preferences  string `json:"preferences"`
	Location     string `json:"location,omitempty"`
}

// generateResponse is the endpoint's envelope around the plan.
type generateResponse struct {
	Plan  *models.WeeklyPlan `json:"plan"`
	Error string             `json:"error,omitempty"`
}

// Client invokes the remote plan-generation endpoint. The endpoint is a
// generative producer, so every response is schema-validated before return.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a plan-generation client.
func NewClient(baseURL, apiKey, model string, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

const maxAttempts = 2

// GeneratePlan requests a weekly plan for the given profile. Transport
// failures are retried once; an invalid plan shape is not retried, it is an
// error the caller reports.
func (c *Client) GeneratePlan(ctx context.Context, in ProfileInput) (*models.WeeklyPlan, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Info("retrying plan generation", "attempt", attempt)
		}
		plan, retryable, err := c.generate(ctx, in)
		if err == nil {
			return plan, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) generate(ctx context.Context, in ProfileInput) (plan *models.WeeklyPlan, retryable bool, err error) {
	body, err := json.Marshal(map[string]any{
		"model":         c.model,
		"goals":         in.Goals,
		"current_stats": in.CurrentStats,
		"preferences":   in.Preferences,
		"location":      in.Location,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-plan", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("calling plan endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("plan endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("plan endpoint returned %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, false, fmt.Errorf("parsing plan response: %w", err)
	}
	if gr.Error != "" {
		return nil, false, fmt.Errorf("plan endpoint error: %s", gr.Error)
	}
	if gr.Plan == nil {
		return nil, false, fmt.Errorf("plan endpoint returned no plan")
	}
	if err := gr.Plan.Validate(); err != nil {
		return nil, false, fmt.Errorf("generated plan failed validation: %w", err)
	}
	if gr.Plan.Location == "" {
		gr.Plan.Location = in.Location
	}
	return gr.Plan, false, nil
}
