package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"futurecustomer/internal/model"

	"github.com/redis/go-redis/v9"
)

// SimulationCache handles Redis operations for per-session simulator state
type SimulationCache interface {
	Load(ctx context.Context, sessionID string) (*model.SimulationState, error)
	Save(ctx context.Context, sessionID string, state *model.SimulationState) error
	Delete(ctx context.Context, sessionID string) error
}

type simulationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSimulationCache creates a new simulation cache
func NewSimulationCache(client *redis.Client, ttl time.Duration) SimulationCache {
	return &simulationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *simulationCache) key(sessionID string) string {
	return fmt.Sprintf("simulation:%s:state", sessionID)
}

// Load returns nil without error when the session has no state
func (c *simulationCache) Load(ctx context.Context, sessionID string) (*model.SimulationState, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save refreshes the TTL on every write
func (c *simulationCache) Save(ctx context.Context, sessionID string, state *model.SimulationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sessionID), data, c.ttl).Err()
}

func (c *simulationCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}

// MemorySimulationCache keeps state in process, for running the simulator without Redis
type MemorySimulationCache struct {
	mu     sync.Mutex
	states map[string][]byte
}

// NewMemorySimulationCache creates an empty in-process cache
func NewMemorySimulationCache() *MemorySimulationCache {
	return &MemorySimulationCache{states: make(map[string][]byte)}
}

func (c *MemorySimulationCache) Load(_ context.Context, sessionID string) (*model.SimulationState, error) {
	c.mu.Lock()
	data, ok := c.states[sessionID]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var state model.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *MemorySimulationCache) Save(_ context.Context, sessionID string, state *model.SimulationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.states[sessionID] = data
	c.mu.Unlock()
	return nil
}

func (c *MemorySimulationCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	delete(c.states, sessionID)
	c.mu.Unlock()
	return nil
}
