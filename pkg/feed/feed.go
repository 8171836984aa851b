package feed

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// popularBranchProbability is the per-request probability that the default
// strategy orders by popularity rather than recency.
const popularBranchProbability = 0.7

// GetFeed generates a personalized feed page.
//
// The flow:
//  1. Resolve the agent's exclusion set (consumed content IDs)
//  2. Build the candidate query (type filter + exclusion filter)
//  3. Select a ranking strategy: semantic when the agent has a preference
//     vector, otherwise a per-request coin flip between popularity (0.7)
//     and recency (0.3)
//  4. Assemble the page and continuation cursor
//
// Exclusion is applied to the candidate pool before ranking, so the page
// budget is never spent on excluded items and TotalAvailable reflects only
// content the agent can actually still receive.
//
// Parameters are supplied as options: WithAgent, WithCursor, WithLimit,
// WithContentType, WithExcludeConsumed.
//
// Example:
//
//	page, err := engine.GetFeed(ctx,
//	    feed.WithAgent(agentID),
//	    feed.WithLimit(10),
//	    feed.WithCursor(prev.NextCursor),
//	)
func (e *Engine) GetFeed(ctx context.Context, opts ...FeedOption) (*FeedPage, error) {
	options := applyFeedOptions(defaultFeedLimit, opts)
	return e.buildFeed(ctx, "GetFeed", options)
}

// GetShorts generates a feed page of short-form content only.
//
// Identical to GetFeed with the content type forced to short and a default
// page size of 20.
func (e *Engine) GetShorts(ctx context.Context, opts ...FeedOption) (*FeedPage, error) {
	options := applyFeedOptions(defaultShortsLimit, opts)
	options.ContentType = ContentTypeShort
	return e.buildFeed(ctx, "GetShorts", options)
}

// buildFeed runs the shared personalized-feed pipeline.
func (e *Engine) buildFeed(ctx context.Context, op string, options *FeedOptions) (*FeedPage, error) {
	feedID := uuid.NewString()
	offset := e.codec.Decode(options.Cursor)

	agent, err := e.resolveAgent(ctx, options.AgentID)
	if err != nil {
		return nil, NewFeedError(op, err)
	}

	excludeIDs, err := e.resolveExclusions(ctx, agent, options.ExcludeConsumed)
	if err != nil {
		return nil, NewFeedError(op, err)
	}

	filter := repository.ContentFilter{
		Type:       string(options.ContentType),
		ExcludeIDs: excludeIDs,
	}

	var window []*repository.Content
	var strategy Strategy

	if agent != nil && len(agent.PreferenceVector) > 0 {
		// Semantic: ascending cosine distance to the preference vector.
		// The pool narrows to embedded content only.
		strategy = StrategySemantic
		filter.RequireEmbedding = true

		neighbors, err := e.repo.NearestContent(ctx, agent.PreferenceVector, &repository.NearestOptions{
			Filter: filter,
			K:      offset + options.Limit,
		})
		if err != nil {
			return nil, NewFeedError(op, err)
		}
		window = sliceWindow(neighbors, offset, options.Limit)
	} else {
		// Default: one coin flip per request, not per item.
		order := repository.OrderPopularity
		strategy = StrategyPopular
		if e.newRand().Float64() >= popularBranchProbability {
			order = repository.OrderRecency
			strategy = StrategyRecent
		}

		window, err = e.repo.ScanContent(ctx, &repository.ScanOptions{
			Filter: filter,
			Order:  order,
			Offset: offset,
			Limit:  options.Limit,
		})
		if err != nil {
			return nil, NewFeedError(op, err)
		}
	}

	// The denominator uses the same filters as the candidate query, so a
	// type filter or exclusion set can never skew it.
	total, err := e.repo.CountContent(ctx, &filter)
	if err != nil {
		return nil, NewFeedError(op, err)
	}

	return e.assemble(window, offset, options.Limit, total, strategy, feedID), nil
}

// GetTrending generates a feed page ordered purely by popularity.
//
// Trending ignores agent identity entirely: no personalization and no
// consumption-history exclusion.
func (e *Engine) GetTrending(ctx context.Context, opts ...FeedOption) (*FeedPage, error) {
	options := applyFeedOptions(defaultFeedLimit, opts)
	feedID := uuid.NewString()
	offset := e.codec.Decode(options.Cursor)

	filter := repository.ContentFilter{Type: string(options.ContentType)}

	window, err := e.repo.ScanContent(ctx, &repository.ScanOptions{
		Filter: filter,
		Order:  repository.OrderPopularity,
		Offset: offset,
		Limit:  options.Limit,
	})
	if err != nil {
		return nil, NewFeedError("GetTrending", err)
	}

	total, err := e.repo.CountContent(ctx, &filter)
	if err != nil {
		return nil, NewFeedError("GetTrending", err)
	}

	return e.assemble(window, offset, options.Limit, total, StrategyTrending, feedID), nil
}

// GetDiscover generates a pseudo-random discovery feed page.
//
// The candidate pool is shuffled uniformly with a per-request random source,
// after excluding the agent's consumption history when an agent is known.
// Because the shuffle is reseeded per request, discover cursors are only
// meaningful within one request's ordering.
func (e *Engine) GetDiscover(ctx context.Context, opts ...FeedOption) (*FeedPage, error) {
	options := applyFeedOptions(defaultFeedLimit, opts)
	feedID := uuid.NewString()
	offset := e.codec.Decode(options.Cursor)

	agent, err := e.resolveAgent(ctx, options.AgentID)
	if err != nil {
		return nil, NewFeedError("GetDiscover", err)
	}

	excludeIDs, err := e.resolveExclusions(ctx, agent, options.ExcludeConsumed)
	if err != nil {
		return nil, NewFeedError("GetDiscover", err)
	}

	filter := repository.ContentFilter{
		Type:       string(options.ContentType),
		ExcludeIDs: excludeIDs,
	}

	pool, err := e.repo.ScanContent(ctx, &repository.ScanOptions{
		Filter: filter,
		Order:  repository.OrderInsertion,
	})
	if err != nil {
		return nil, NewFeedError("GetDiscover", err)
	}

	rng := e.newRand()
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	window := sliceWindow(pool, offset, options.Limit)

	return e.assemble(window, offset, options.Limit, len(pool), StrategyDiscover, feedID), nil
}

// GetRelated returns content similar to a specific item.
//
// The query vector is the item's own embedding; the item is excluded from
// its own results and every result carries an embedding and a similarity
// score. Returns ErrNotFound when the item does not exist, and an empty
// slice when it exists but has no embedding.
func (e *Engine) GetRelated(ctx context.Context, contentID string, limit int) ([]*Content, error) {
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	content, err := e.repo.GetContent(ctx, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFeedError("GetRelated", ErrNotFound)
		}
		return nil, NewFeedError("GetRelated", err)
	}

	if content.Embedding == nil {
		return []*Content{}, nil
	}

	neighbors, err := e.repo.NearestContent(ctx, content.Embedding, &repository.NearestOptions{
		Filter: repository.ContentFilter{
			ExcludeIDs: []string{contentID},
		},
		K: limit,
	})
	if err != nil {
		return nil, NewFeedError("GetRelated", err)
	}

	return fromRepositoryContents(neighbors), nil
}

// resolveAgent loads the agent when an ID was supplied.
//
// An unknown agent ID degrades to an anonymous request rather than failing;
// the transport layer owns identity errors.
func (e *Engine) resolveAgent(ctx context.Context, agentID string) (*repository.Agent, error) {
	if agentID == "" {
		return nil, nil
	}
	agent, err := e.repo.GetAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return agent, nil
}

// resolveExclusions returns the content IDs to exclude from a candidate
// pool: the agent's consumed set when the agent is known and exclusion is
// requested, otherwise nothing.
func (e *Engine) resolveExclusions(ctx context.Context, agent *repository.Agent, excludeConsumed bool) ([]string, error) {
	if agent == nil || !excludeConsumed {
		return nil, nil
	}

	consumed, err := e.repo.ConsumedContentIDs(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	if len(consumed) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(consumed))
	for id := range consumed {
		ids = append(ids, id)
	}
	return ids, nil
}

// assemble turns a ranked candidate window into a feed page.
//
// The window already starts at offset and holds at most limit items. The
// continuation cursor is set exactly when the page is full: a full page
// signals that more items may exist. This is a heuristic, not a guarantee;
// a pool of exactly offset+limit items yields one extra cursor whose next
// page is empty.
func (e *Engine) assemble(window []*repository.Content, offset, limit, total int, strategy Strategy, feedID string) *FeedPage {
	items := make([]*FeedItem, len(window))
	for i, candidate := range window {
		items[i] = &FeedItem{
			Content:  fromRepositoryContent(candidate),
			Position: offset + i,
			Rationale: Rationale{
				Strategy:    strategy,
				FeedSession: feedID,
			},
		}
	}

	page := &FeedPage{
		Items:          items,
		TotalAvailable: total,
		FeedID:         feedID,
	}
	if len(window) == limit {
		page.NextCursor = e.codec.Encode(offset + limit)
	}
	return page
}

// sliceWindow slices [offset, offset+limit) out of a ranked pool, clamped
// to the pool's bounds.
func sliceWindow(pool []*repository.Content, offset, limit int) []*repository.Content {
	if offset >= len(pool) {
		return nil
	}
	end := offset + limit
	if end > len(pool) {
		end = len(pool)
	}
	return pool[offset:end]
}
