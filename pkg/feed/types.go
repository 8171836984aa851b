// Package feed provides the AgentTube feed generation engine.
package feed

import "time"

// ContentType classifies a content item.
type ContentType string

const (
	// ContentTypeVideo is long-form video content.
	ContentTypeVideo ContentType = "video"

	// ContentTypeShort is short-form video content (reels/shorts format).
	ContentTypeShort ContentType = "short"

	// ContentTypeAudio is audio content.
	ContentTypeAudio ContentType = "audio"

	// ContentTypeText is text content.
	ContentTypeText ContentType = "text"

	// ContentTypeImage is image content.
	ContentTypeImage ContentType = "image"

	// ContentTypeMixed is content combining several media types.
	ContentTypeMixed ContentType = "mixed"
)

// ValidContentType reports whether t is one of the known content types.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentTypeVideo, ContentTypeShort, ContentTypeAudio,
		ContentTypeText, ContentTypeImage, ContentTypeMixed:
		return true
	}
	return false
}

// Content is a unit of consumable material.
//
// A content item carries the textual fields agents actually consume
// (transcript, raw text, summary) plus an optional embedding vector used for
// semantic ranking. Content without an embedding is simply excluded from any
// semantic pool; a missing embedding is data, not an error.
type Content struct {
	// ID is the unique identifier of the content.
	ID string `json:"id"`

	// Title is the content title.
	Title string `json:"title"`

	// Description is an optional short description.
	Description string `json:"description,omitempty"`

	// Type is the content type.
	Type ContentType `json:"type"`

	// SourceURL is the original URL if the content was imported.
	SourceURL string `json:"source_url,omitempty"`

	// Transcript is the full transcript for video/audio content.
	Transcript string `json:"transcript,omitempty"`

	// RawText holds the body of text content.
	RawText string `json:"raw_text,omitempty"`

	// Summary is an optional generated summary.
	Summary string `json:"summary,omitempty"`

	// Tags is the content tag set.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional structured information.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Embedding is the vector embedding for similarity search.
	// Nil when no embedding was computed. When present its length is
	// exactly the provider's fixed dimensionality.
	// Omitted from JSON to reduce payload size.
	Embedding []float32 `json:"-"`

	// DurationSeconds is the playback duration for timed media.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// ViewCount counts direct content retrievals.
	ViewCount int64 `json:"view_count"`

	// ConsumptionCount counts logged agent consumptions.
	// Monotonically non-decreasing.
	ConsumptionCount int64 `json:"consumption_count"`

	// CreatedAt is when the content was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the content was last updated.
	UpdatedAt time.Time `json:"updated_at"`

	// Score is the similarity score from search operations,
	// defined as 1 - cosine distance. Higher is more similar.
	// Only populated on semantic search and related-content results.
	Score float64 `json:"score,omitempty"`
}

// Agent is a registered automated consumer.
type Agent struct {
	// ID is the unique identifier of the agent.
	ID string `json:"id"`

	// Name is the agent's display name.
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// AgentType labels the agent implementation (e.g. "claude", "gpt-4").
	AgentType string `json:"agent_type,omitempty"`

	// APIKey is the key minted at registration. It is returned exactly
	// once, at registration time, and cannot be retrieved later.
	APIKey string `json:"api_key,omitempty"`

	// Interests is the agent's declared interest set. Order carries no
	// meaning.
	Interests []string `json:"interests,omitempty"`

	// PreferenceVector is the embedding of the agent's interests,
	// computed once at registration. Nil when the agent declared no
	// interests or the embedding provider was unavailable; such agents
	// receive the default ranking strategy.
	// Omitted from JSON to reduce payload size.
	PreferenceVector []float32 `json:"-"`

	// TotalContentConsumed counts logged consumptions by this agent.
	TotalContentConsumed int64 `json:"total_content_consumed"`

	// TotalWatchTimeSeconds accumulates reported watch durations.
	TotalWatchTimeSeconds float64 `json:"total_watch_time_seconds"`

	// Metadata contains additional structured information.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the agent registered.
	CreatedAt time.Time `json:"created_at"`

	// LastActiveAt is the agent's most recent activity timestamp.
	LastActiveAt time.Time `json:"last_active_at"`
}

// HasPreferenceVector reports whether the agent carries a preference vector
// and therefore qualifies for semantic ranking.
func (a *Agent) HasPreferenceVector() bool {
	return a != nil && len(a.PreferenceVector) > 0
}

// Consumption is one append-only record of an agent consuming content.
//
// Records are never mutated after creation. Each record drives exactly one
// popularity increment on the referenced content and one increment of the
// agent's consumption counter.
type Consumption struct {
	// ID is the unique record identifier.
	ID int64 `json:"id"`

	// AgentID references the consuming agent.
	AgentID string `json:"agent_id"`

	// ContentID references the consumed content.
	ContentID string `json:"content_id"`

	// ConsumedAt is when the consumption was logged.
	ConsumedAt time.Time `json:"consumed_at"`

	// WatchDurationSeconds is how long the agent spent on the content.
	WatchDurationSeconds float64 `json:"watch_duration_seconds,omitempty"`

	// CompletionPercentage is how much of the content was consumed (0-100).
	CompletionPercentage float64 `json:"completion_percentage"`

	// Rating is an optional 1-5 rating.
	Rating *int `json:"rating,omitempty"`

	// Feedback is optional free-form feedback text.
	Feedback string `json:"feedback,omitempty"`

	// LearnedConcepts lists concepts the agent reported learning.
	LearnedConcepts []string `json:"learned_concepts,omitempty"`
}

// Strategy identifies the ranking strategy that produced a feed item.
type Strategy string

const (
	// StrategySemantic orders by ascending cosine distance to the agent's
	// preference vector.
	StrategySemantic Strategy = "semantic"

	// StrategyPopular orders by descending consumption count.
	StrategyPopular Strategy = "popular"

	// StrategyRecent orders by descending creation time.
	StrategyRecent Strategy = "recent"

	// StrategyTrending orders by descending consumption count with no
	// personalization.
	StrategyTrending Strategy = "trending"

	// StrategyDiscover orders pseudo-randomly (uniform shuffle).
	StrategyDiscover Strategy = "discover"
)

// Rationale records why an item appeared in a feed page.
//
// It is attached for observability only and carries no ranking semantics.
type Rationale struct {
	// Strategy is the ranking strategy that produced the item.
	Strategy Strategy `json:"strategy"`

	// FeedSession is the identifier of the feed request that produced
	// the item.
	FeedSession string `json:"feed_session"`
}

// FeedItem is one positioned entry in a feed page.
type FeedItem struct {
	// Content is the content item.
	Content *Content `json:"content"`

	// Position is the item's absolute position in the ranked candidate
	// sequence (offset-based, not page-local).
	Position int `json:"position"`

	// Rationale records the producing strategy and feed session.
	Rationale Rationale `json:"rationale"`
}

// FeedPage is one page of feed results. Pages are transient and never
// persisted.
type FeedPage struct {
	// Items is the ordered page contents.
	Items []*FeedItem `json:"items"`

	// NextCursor continues pagination when non-empty. It is set exactly
	// when the page is full, which signals that more items may exist;
	// an empty cursor signals exhaustion.
	NextCursor string `json:"next_cursor,omitempty"`

	// TotalAvailable is the size of the filtered, exclusion-adjusted
	// candidate pool.
	TotalAvailable int `json:"total_available"`

	// FeedID uniquely identifies this feed request, for observability.
	// Two successive requests always receive distinct FeedIDs.
	FeedID string `json:"feed_id"`
}
