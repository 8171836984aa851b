// Package repository defines the content repository contract for AgentTube.
//
// It declares the Repository interface that all storage backends must satisfy,
// along with the storage-level record types and query options. The feed engine
// depends only on this interface, never on a concrete storage engine.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that a requested record does not exist.
//
// All backends return this error (possibly wrapped) from Get operations
// so callers can test with errors.Is.
var ErrNotFound = errors.New("record not found")

// Content represents a content item as persisted by a backend.
//
// This type is defined in the repository package to avoid circular
// dependencies with the feed package. It mirrors the feed.Content structure.
type Content struct {
	// ID is the unique identifier of the content (UUID string).
	ID string

	// Title is the content title.
	Title string

	// Description is an optional short description.
	Description string

	// Type is the content type (video, short, audio, text, image, mixed).
	Type string

	// SourceURL is the original URL if the content was imported.
	SourceURL string

	// Transcript is the full transcript for video/audio content.
	Transcript string

	// RawText holds the body of text content.
	RawText string

	// Summary is an optional generated summary.
	Summary string

	// Tags is the content tag set.
	Tags []string

	// Metadata contains additional structured information.
	Metadata map[string]interface{}

	// Embedding is the vector embedding for similarity search.
	// Nil when no embedding was computed for this content.
	Embedding []float32

	// DurationSeconds is the playback duration for timed media.
	DurationSeconds float64

	// ViewCount counts direct content retrievals.
	ViewCount int64

	// ConsumptionCount counts logged agent consumptions.
	// Monotonically non-decreasing.
	ConsumptionCount int64

	// CreatedAt is when the content was created.
	CreatedAt time.Time

	// UpdatedAt is when the content was last updated.
	UpdatedAt time.Time

	// Distance is the cosine distance from a query vector. Nil outside
	// nearest queries; NearestContent sets it on every result, including
	// exact matches at distance 0. Range [0, 2], smaller is closer.
	Distance *float64
}

// Agent represents a registered agent as persisted by a backend.
type Agent struct {
	// ID is the unique identifier of the agent (UUID string).
	ID string

	// Name is the agent's display name.
	Name string

	// Description is an optional free-form description.
	Description string

	// AgentType labels the agent implementation (e.g. "claude", "gpt-4").
	AgentType string

	// APIKey is the key minted at registration.
	APIKey string

	// Interests is the agent's declared interest set.
	Interests []string

	// PreferenceVector is the embedded interests vector.
	// Nil when the embedding provider was unavailable at registration
	// or the agent declared no interests.
	PreferenceVector []float32

	// TotalContentConsumed counts logged consumptions by this agent.
	TotalContentConsumed int64

	// TotalWatchTimeSeconds accumulates reported watch durations.
	TotalWatchTimeSeconds float64

	// Metadata contains additional structured information.
	Metadata map[string]interface{}

	// CreatedAt is when the agent registered.
	CreatedAt time.Time

	// LastActiveAt is the agent's most recent activity timestamp.
	LastActiveAt time.Time
}

// Consumption is one append-only record of an agent consuming content.
type Consumption struct {
	// ID is the unique record identifier (snowflake int64).
	ID int64

	// AgentID references the consuming agent.
	AgentID string

	// ContentID references the consumed content.
	ContentID string

	// ConsumedAt is when the consumption was logged.
	ConsumedAt time.Time

	// WatchDurationSeconds is how long the agent spent on the content.
	WatchDurationSeconds float64

	// CompletionPercentage is how much of the content was consumed (0-100).
	CompletionPercentage float64

	// Rating is an optional 1-5 rating.
	Rating *int

	// Feedback is optional free-form feedback text.
	Feedback string

	// LearnedConcepts lists concepts the agent reported learning.
	LearnedConcepts []string
}

// Order defines a deterministic ordering for content scans.
type Order string

const (
	// OrderPopularity orders by descending consumption count.
	OrderPopularity Order = "popularity"

	// OrderRecency orders by descending creation time.
	OrderRecency Order = "recency"

	// OrderInsertion orders by insertion sequence (oldest first).
	// This is the pool's natural order used for tie-breaking and for
	// candidate pools that are reordered in process.
	OrderInsertion Order = "insertion"
)

// Every Order carries an implicit insertion-sequence tiebreak so that scans
// are deterministic for fixed data.

// CounterField names an atomically incrementable content counter.
type CounterField string

const (
	// FieldViewCount is the content view counter.
	FieldViewCount CounterField = "view_count"

	// FieldConsumptionCount is the content popularity counter.
	FieldConsumptionCount CounterField = "consumption_count"
)

// ContentFilter narrows a content query.
//
// The zero value matches all content.
type ContentFilter struct {
	// Type restricts results to one content type. Empty matches all types.
	Type string

	// ExcludeIDs removes the given content IDs from the result set.
	// This is applied inside the query, before ordering and paging.
	ExcludeIDs []string

	// RequireEmbedding restricts results to content with an embedding.
	RequireEmbedding bool

	// TagsAny restricts results to content carrying at least one of the
	// given tags.
	TagsAny []string
}

// ScanOptions configures ScanContent.
type ScanOptions struct {
	// Filter narrows the candidate set.
	Filter ContentFilter

	// Order is the result ordering. Defaults to OrderInsertion.
	Order Order

	// Offset is the number of ordered results to skip.
	Offset int

	// Limit caps the number of results. Zero or negative means no cap.
	Limit int
}

// NearestOptions configures NearestContent.
type NearestOptions struct {
	// Filter narrows the candidate pool. RequireEmbedding is implied;
	// content without an embedding is never part of a nearest query.
	Filter ContentFilter

	// K caps the number of neighbors returned.
	K int
}

// Repository defines the storage contract the feed engine depends on.
//
// All backends (SQLite, PostgreSQL, MySQL) must implement this interface.
// Counter mutations are atomic "add N" operations at the storage boundary;
// implementations must never read-then-write a counter.
type Repository interface {
	// InsertContent inserts a content item.
	InsertContent(ctx context.Context, content *Content) error

	// GetContent retrieves a content item by ID.
	// Returns ErrNotFound if no such content exists.
	GetContent(ctx context.Context, id string) (*Content, error)

	// ScanContent returns content matching the filter in the requested
	// deterministic order, honoring offset and limit.
	ScanContent(ctx context.Context, opts *ScanOptions) ([]*Content, error)

	// NearestContent returns up to K content items closest to the query
	// embedding by cosine distance, ascending, with Distance populated.
	// Ties are broken by insertion order.
	NearestContent(ctx context.Context, embedding []float32, opts *NearestOptions) ([]*Content, error)

	// CountContent counts content matching the filter.
	CountContent(ctx context.Context, filter *ContentFilter) (int, error)

	// IncrementContent atomically adds delta to one of the content's
	// counters. Returns ErrNotFound if no such content exists.
	IncrementContent(ctx context.Context, id string, field CounterField, delta int64) error

	// InsertAgent inserts an agent.
	InsertAgent(ctx context.Context, agent *Agent) error

	// GetAgent retrieves an agent by ID.
	// Returns ErrNotFound if no such agent exists.
	GetAgent(ctx context.Context, id string) (*Agent, error)

	// GetAgentByAPIKey retrieves an agent by its API key.
	// Returns ErrNotFound if no agent holds the key.
	GetAgentByAPIKey(ctx context.Context, apiKey string) (*Agent, error)

	// IncrementAgentStats atomically adds the given deltas to the agent's
	// consumption counter and watch-time accumulator, and refreshes the
	// agent's last-active timestamp.
	IncrementAgentStats(ctx context.Context, id string, consumedDelta int64, watchDelta float64) error

	// TouchAgent refreshes the agent's last-active timestamp.
	TouchAgent(ctx context.Context, id string) error

	// InsertConsumption appends a consumption record.
	InsertConsumption(ctx context.Context, record *Consumption) error

	// ListConsumptions returns the agent's consumption records,
	// most recent first, capped at limit (no cap when limit <= 0).
	ListConsumptions(ctx context.Context, agentID string, limit int) ([]*Consumption, error)

	// ConsumedContentIDs returns the set of content IDs referenced by the
	// agent's consumption records.
	ConsumedContentIDs(ctx context.Context, agentID string) (map[string]struct{}, error)

	// Close closes the repository and releases resources.
	Close() error
}
