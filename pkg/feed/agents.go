package feed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// apiKeyPrefix marks AgentTube API keys.
const apiKeyPrefix = "at_"

// RegisterAgent registers a new agent and mints its API key.
//
// When the agent declares interests and an embedding provider is available,
// the interests are concatenated into one string and embedded once as the
// agent's preference vector. The vector is not recomputed afterwards. A
// missing or failing provider leaves the vector absent and the agent falls
// back to the default ranking strategy on later feed requests; provider
// failure is never fatal to registration.
//
// The returned agent carries its API key; the key is not retrievable later.
//
// Example:
//
//	agent, err := engine.RegisterAgent(ctx, "scholar",
//	    feed.WithInterests("ai", "coding"),
//	    feed.WithAgentType("claude"),
//	)
func (e *Engine) RegisterAgent(ctx context.Context, name string, opts ...RegisterOption) (*Agent, error) {
	if name == "" {
		return nil, NewFeedError("RegisterAgent", ErrInvalidInput)
	}

	options := applyRegisterOptions(opts)

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, NewFeedError("RegisterAgent", err)
	}

	now := time.Now().UTC()
	agent := &Agent{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  options.Description,
		AgentType:    options.AgentType,
		APIKey:       apiKey,
		Interests:    options.Interests,
		Metadata:     options.Metadata,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	if len(options.Interests) > 0 {
		agent.PreferenceVector = e.embed(ctx, strings.Join(options.Interests, " "))
	}

	if err := e.repo.InsertAgent(ctx, toRepositoryAgent(agent)); err != nil {
		return nil, NewFeedError("RegisterAgent", err)
	}

	return agent, nil
}

// GetAgent retrieves an agent by ID.
//
// Returns ErrNotFound when no such agent exists.
func (e *Engine) GetAgent(ctx context.Context, id string) (*Agent, error) {
	agent, err := e.repo.GetAgent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFeedError("GetAgent", ErrNotFound)
		}
		return nil, NewFeedError("GetAgent", err)
	}
	return fromRepositoryAgent(agent), nil
}

// GetAgentByAPIKey retrieves an agent by its API key and refreshes the
// agent's last-active timestamp.
//
// Returns ErrNotFound when no agent holds the key.
func (e *Engine) GetAgentByAPIKey(ctx context.Context, apiKey string) (*Agent, error) {
	agent, err := e.repo.GetAgentByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFeedError("GetAgentByAPIKey", ErrNotFound)
		}
		return nil, NewFeedError("GetAgentByAPIKey", err)
	}

	if err := e.repo.TouchAgent(ctx, agent.ID); err != nil {
		return nil, NewFeedError("GetAgentByAPIKey", err)
	}

	return fromRepositoryAgent(agent), nil
}

// newAPIKey mints an API key from 32 bytes of system randomness.
func newAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
