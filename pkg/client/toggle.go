package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// entityLock returns the mutex serializing operations on one entity.
// Overlapping toggles on the same trigger or chain queue up instead of
// racing; each one captures the then-current value before flipping.
func (c *Client) entityLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

type toggleRequest struct {
	IsActive bool `json:"is_active"`
}

// toggle is the two-phase optimistic update: flip the in-memory flag,
// confirm with the backend, and on failure restore the exact captured
// prior value rather than negating again.
func (c *Client) toggle(ctx context.Context, key, path string, flag *bool) error {
	lock := c.entityLock(key)
	lock.Lock()
	defer lock.Unlock()

	prev := *flag
	*flag = !prev

	if err := c.do(ctx, http.MethodPost, path, toggleRequest{IsActive: *flag}, nil); err != nil {
		*flag = prev
		return err
	}
	return nil
}

// ToggleTrigger optimistically flips the trigger's active flag and
// confirms it with the backend, rolling back on failure.
func (c *Client) ToggleTrigger(ctx context.Context, agentID uint, trigger *Trigger) error {
	return c.toggle(ctx,
		fmt.Sprintf("trigger/%d", trigger.ID),
		fmt.Sprintf("/api/agents/%d/triggers/%d/toggle", agentID, trigger.ID),
		&trigger.IsActive)
}

// ToggleChain is ToggleTrigger for chains.
func (c *Client) ToggleChain(ctx context.Context, agentID uint, chain *Chain) error {
	return c.toggle(ctx,
		fmt.Sprintf("chain/%d", chain.ID),
		fmt.Sprintf("/api/agents/%d/chains/%d/toggle", agentID, chain.ID),
		&chain.IsActive)
}
