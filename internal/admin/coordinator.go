// Package admin applies administrative actions to sets of users via the
// remote user-management endpoint.
package admin

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

// UserAPI is the remote endpoint the coordinator dispatches to. *Client
// satisfies it.
type UserAPI interface {
	Apply(ctx context.Context, action models.BulkAction, targetID uuid.UUID) error
}

// BulkResult aggregates per-target outcomes of a bulk action. Failures are
// isolated per target; one failing invocation never aborts the batch.
type BulkResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    []uuid.UUID `json:"failed,omitempty"`
}

// Coordinator fans a bulk action out across targets concurrently.
type Coordinator struct {
	api UserAPI
	log *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(api UserAPI, log *slog.Logger) *Coordinator {
	return &Coordinator{api: api, log: log}
}

// ApplyBulkAction dispatches one remote invocation per target concurrently
// and aggregates outcomes. The acting user is always excluded from the
// targets, and duplicate targets are collapsed.
func (c *Coordinator) ApplyBulkAction(ctx context.Context, action models.BulkAction, targetIDs []uuid.UUID, actingUserID uuid.UUID) BulkResult {
	seen := make(map[uuid.UUID]bool, len(targetIDs))
	targets := make([]uuid.UUID, 0, len(targetIDs))
	for _, id := range targetIDs {
		if id == actingUserID || id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	result := BulkResult{}

	for _, id := range targets {
		wg.Add(1)
		go func(target uuid.UUID) {
			defer wg.Done()
			err := c.api.Apply(ctx, action, target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.log.Warn("bulk action failed for target", "action", action, "target", target, "error", err)
				result.Failed = append(result.Failed, target)
				return
			}
			result.Succeeded++
		}(id)
	}
	wg.Wait()

	// Stable output for reporting.
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].String() < result.Failed[j].String()
	})

	c.log.Info("bulk action complete", "action", action,
		"targets", len(targets), "succeeded", result.Succeeded, "failed", len(result.Failed))
	return result
}
