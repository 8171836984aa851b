package feed

import (
	"context"
	"errors"
	"time"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// LogConsumption records that an agent consumed a content item.
//
// The operation:
//  1. Verifies the content exists (ErrNotFound otherwise)
//  2. Appends exactly one consumption record
//  3. Atomically increments the agent's consumption counter and watch-time
//     accumulator
//  4. Atomically increments the content's popularity counter
//
// Both increments are repository-side "add N" operations, never
// read-then-write, so M concurrent calls against the same content raise its
// popularity counter by exactly M regardless of interleaving.
//
// Example:
//
//	record, err := engine.LogConsumption(ctx, agent.ID, content.ID,
//	    feed.WithWatchDuration(42.5),
//	    feed.WithCompletion(100),
//	    feed.WithRating(5),
//	)
func (e *Engine) LogConsumption(ctx context.Context, agentID, contentID string, opts ...ConsumeOption) (*Consumption, error) {
	if agentID == "" || contentID == "" {
		return nil, NewFeedError("LogConsumption", ErrInvalidInput)
	}

	options := applyConsumeOptions(opts)

	if _, err := e.repo.GetContent(ctx, contentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFeedError("LogConsumption", ErrNotFound)
		}
		return nil, NewFeedError("LogConsumption", err)
	}

	record := &Consumption{
		ID:                   e.snowflakeNode.Generate().Int64(),
		AgentID:              agentID,
		ContentID:            contentID,
		ConsumedAt:           time.Now().UTC(),
		WatchDurationSeconds: options.WatchDurationSeconds,
		CompletionPercentage: options.CompletionPercentage,
		Rating:               options.Rating,
		Feedback:             options.Feedback,
		LearnedConcepts:      options.LearnedConcepts,
	}

	if err := e.repo.InsertConsumption(ctx, toRepositoryConsumption(record)); err != nil {
		return nil, NewFeedError("LogConsumption", err)
	}

	if err := e.repo.IncrementAgentStats(ctx, agentID, 1, options.WatchDurationSeconds); err != nil {
		return nil, NewFeedError("LogConsumption", err)
	}

	if err := e.repo.IncrementContent(ctx, contentID, repository.FieldConsumptionCount, 1); err != nil {
		return nil, NewFeedError("LogConsumption", err)
	}

	return record, nil
}

// ConsumptionHistory returns the agent's consumption records, most recent
// first, capped at limit (50 when limit <= 0).
func (e *Engine) ConsumptionHistory(ctx context.Context, agentID string, limit int) ([]*Consumption, error) {
	if agentID == "" {
		return nil, NewFeedError("ConsumptionHistory", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	records, err := e.repo.ListConsumptions(ctx, agentID, limit)
	if err != nil {
		return nil, NewFeedError("ConsumptionHistory", err)
	}

	return fromRepositoryConsumptions(records), nil
}
