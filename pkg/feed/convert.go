package feed

import (
	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// toRepositoryContent converts a feed.Content to repository.Content.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func toRepositoryContent(c *Content) *repository.Content {
	return &repository.Content{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Type:             string(c.Type),
		SourceURL:        c.SourceURL,
		Transcript:       c.Transcript,
		RawText:          c.RawText,
		Summary:          c.Summary,
		Tags:             c.Tags,
		Metadata:         c.Metadata,
		Embedding:        c.Embedding,
		DurationSeconds:  c.DurationSeconds,
		ViewCount:        c.ViewCount,
		ConsumptionCount: c.ConsumptionCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// fromRepositoryContent converts a repository.Content to feed.Content.
//
// The repository's cosine distance, when set, surfaces as a similarity
// score (1 - distance).
func fromRepositoryContent(c *repository.Content) *Content {
	content := &Content{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Type:             ContentType(c.Type),
		SourceURL:        c.SourceURL,
		Transcript:       c.Transcript,
		RawText:          c.RawText,
		Summary:          c.Summary,
		Tags:             c.Tags,
		Metadata:         c.Metadata,
		Embedding:        c.Embedding,
		DurationSeconds:  c.DurationSeconds,
		ViewCount:        c.ViewCount,
		ConsumptionCount: c.ConsumptionCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.Distance != nil {
		content.Score = 1 - *c.Distance
	}
	return content
}

// fromRepositoryContents converts a slice of repository.Content to a slice
// of feed.Content.
func fromRepositoryContents(contents []*repository.Content) []*Content {
	result := make([]*Content, len(contents))
	for i, c := range contents {
		result[i] = fromRepositoryContent(c)
	}
	return result
}

// toRepositoryAgent converts a feed.Agent to repository.Agent.
func toRepositoryAgent(a *Agent) *repository.Agent {
	return &repository.Agent{
		ID:                    a.ID,
		Name:                  a.Name,
		Description:           a.Description,
		AgentType:             a.AgentType,
		APIKey:                a.APIKey,
		Interests:             a.Interests,
		PreferenceVector:      a.PreferenceVector,
		TotalContentConsumed:  a.TotalContentConsumed,
		TotalWatchTimeSeconds: a.TotalWatchTimeSeconds,
		Metadata:              a.Metadata,
		CreatedAt:             a.CreatedAt,
		LastActiveAt:          a.LastActiveAt,
	}
}

// fromRepositoryAgent converts a repository.Agent to feed.Agent.
func fromRepositoryAgent(a *repository.Agent) *Agent {
	return &Agent{
		ID:                    a.ID,
		Name:                  a.Name,
		Description:           a.Description,
		AgentType:             a.AgentType,
		APIKey:                a.APIKey,
		Interests:             a.Interests,
		PreferenceVector:      a.PreferenceVector,
		TotalContentConsumed:  a.TotalContentConsumed,
		TotalWatchTimeSeconds: a.TotalWatchTimeSeconds,
		Metadata:              a.Metadata,
		CreatedAt:             a.CreatedAt,
		LastActiveAt:          a.LastActiveAt,
	}
}

// toRepositoryConsumption converts a feed.Consumption to
// repository.Consumption.
func toRepositoryConsumption(r *Consumption) *repository.Consumption {
	return &repository.Consumption{
		ID:                   r.ID,
		AgentID:              r.AgentID,
		ContentID:            r.ContentID,
		ConsumedAt:           r.ConsumedAt,
		WatchDurationSeconds: r.WatchDurationSeconds,
		CompletionPercentage: r.CompletionPercentage,
		Rating:               r.Rating,
		Feedback:             r.Feedback,
		LearnedConcepts:      r.LearnedConcepts,
	}
}

// fromRepositoryConsumption converts a repository.Consumption to
// feed.Consumption.
func fromRepositoryConsumption(r *repository.Consumption) *Consumption {
	return &Consumption{
		ID:                   r.ID,
		AgentID:              r.AgentID,
		ContentID:            r.ContentID,
		ConsumedAt:           r.ConsumedAt,
		WatchDurationSeconds: r.WatchDurationSeconds,
		CompletionPercentage: r.CompletionPercentage,
		Rating:               r.Rating,
		Feedback:             r.Feedback,
		LearnedConcepts:      r.LearnedConcepts,
	}
}

// fromRepositoryConsumptions converts a slice of repository.Consumption to
// a slice of feed.Consumption.
func fromRepositoryConsumptions(records []*repository.Consumption) []*Consumption {
	result := make([]*Consumption, len(records))
	for i, r := range records {
		result[i] = fromRepositoryConsumption(r)
	}
	return result
}
