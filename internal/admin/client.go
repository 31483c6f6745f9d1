package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// Client invokes the remote user-management endpoint that executes ban and
// delete actions. One POST per target user.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a user-management client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type actionRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id"`
	Action       string    `json:"action"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Apply executes one action against one target user.
func (c *Client) Apply(ctx context.Context, action models.BulkAction, targetID uuid.UUID) error {
	body, err := json.Marshal(actionRequest{TargetUserID: targetID, Action: string(action)})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/manage-user", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling user management endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("user management endpoint returned %d", resp.StatusCode)
	}

	var ar actionResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !ar.Success {
		return fmt.Errorf("action %s rejected for %s: %s", action, targetID, ar.Error)
	}
	return nil
}
