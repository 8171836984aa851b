package feed

// FeedOption is a function type for configuring feed requests.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type FeedOption func(*FeedOptions)

// FeedOptions contains configuration options for feed requests.
type FeedOptions struct {
	// AgentID identifies the requesting agent. Empty means anonymous.
	AgentID string

	// Cursor is the continuation token from a previous page.
	Cursor string

	// Limit is the page size, clamped to [1, 50].
	Limit int

	// ContentType restricts the feed to one content type.
	ContentType ContentType

	// ExcludeConsumed removes the agent's consumption history from the
	// candidate pool. Defaults to true.
	ExcludeConsumed bool
}

// defaultFeedLimit is the page size used when none is requested.
const defaultFeedLimit = 10

// defaultShortsLimit is the page size for the shorts feed.
const defaultShortsLimit = 20

// maxFeedLimit is the largest allowed page size.
const maxFeedLimit = 50

// applyFeedOptions applies feed options over the given default limit and
// clamps the result to the allowed range.
func applyFeedOptions(defaultLimit int, opts []FeedOption) *FeedOptions {
	options := &FeedOptions{
		Limit:           defaultLimit,
		ExcludeConsumed: true,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit < 1 {
		options.Limit = defaultLimit
	}
	if options.Limit > maxFeedLimit {
		options.Limit = maxFeedLimit
	}
	return options
}

// WithAgent sets the requesting agent for a feed request.
//
// Example:
//
//	page, _ := engine.GetFeed(ctx, feed.WithAgent(agentID))
func WithAgent(agentID string) FeedOption {
	return func(opts *FeedOptions) {
		opts.AgentID = agentID
	}
}

// WithCursor sets the pagination cursor for a feed request.
func WithCursor(cursor string) FeedOption {
	return func(opts *FeedOptions) {
		opts.Cursor = cursor
	}
}

// WithLimit sets the page size for a feed request.
func WithLimit(limit int) FeedOption {
	return func(opts *FeedOptions) {
		opts.Limit = limit
	}
}

// WithContentType restricts a feed request to one content type.
func WithContentType(contentType ContentType) FeedOption {
	return func(opts *FeedOptions) {
		opts.ContentType = contentType
	}
}

// WithExcludeConsumed controls whether previously consumed content is
// excluded from the candidate pool. The default is true.
func WithExcludeConsumed(exclude bool) FeedOption {
	return func(opts *FeedOptions) {
		opts.ExcludeConsumed = exclude
	}
}

// RegisterOption is a function type for configuring agent registration.
type RegisterOption func(*RegisterOptions)

// RegisterOptions contains configuration options for agent registration.
type RegisterOptions struct {
	// Description is an optional free-form description.
	Description string

	// AgentType labels the agent implementation.
	AgentType string

	// Interests is the agent's declared interest set, used to bootstrap
	// the preference vector.
	Interests []string

	// Metadata contains additional structured information.
	Metadata map[string]interface{}
}

// applyRegisterOptions applies registration options.
func applyRegisterOptions(opts []RegisterOption) *RegisterOptions {
	options := &RegisterOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithInterests sets the declared interests for agent registration.
//
// Example:
//
//	agent, _ := engine.RegisterAgent(ctx, "scholar",
//	    feed.WithInterests("ai", "coding"))
func WithInterests(interests ...string) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Interests = interests
	}
}

// WithAgentDescription sets the description for agent registration.
func WithAgentDescription(description string) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Description = description
	}
}

// WithAgentType sets the agent type label for agent registration.
func WithAgentType(agentType string) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.AgentType = agentType
	}
}

// WithAgentMetadata sets additional metadata for agent registration.
func WithAgentMetadata(metadata map[string]interface{}) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Metadata = metadata
	}
}

// ContentOption is a function type for configuring content creation.
type ContentOption func(*ContentOptions)

// ContentOptions contains configuration options for content creation.
type ContentOptions struct {
	// Description is an optional short description.
	Description string

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

	// DurationSeconds is the playback duration for timed media.
	DurationSeconds float64

	// Metadata contains additional structured information.
	Metadata map[string]interface{}
}

// applyContentOptions applies content creation options.
func applyContentOptions(opts []ContentOption) *ContentOptions {
	options := &ContentOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithDescription sets the description for content creation.
func WithDescription(description string) ContentOption {
	return func(opts *ContentOptions) {
		opts.Description = description
	}
}

// WithSourceURL sets the source URL for content creation.
func WithSourceURL(sourceURL string) ContentOption {
	return func(opts *ContentOptions) {
		opts.SourceURL = sourceURL
	}
}

// WithTranscript sets the transcript for content creation.
func WithTranscript(transcript string) ContentOption {
	return func(opts *ContentOptions) {
		opts.Transcript = transcript
	}
}

// WithRawText sets the raw text body for content creation.
func WithRawText(rawText string) ContentOption {
	return func(opts *ContentOptions) {
		opts.RawText = rawText
	}
}

// WithSummary sets the summary for content creation.
func WithSummary(summary string) ContentOption {
	return func(opts *ContentOptions) {
		opts.Summary = summary
	}
}

// WithTags sets the tag set for content creation.
func WithTags(tags ...string) ContentOption {
	return func(opts *ContentOptions) {
		opts.Tags = tags
	}
}

// WithDuration sets the playback duration for content creation.
func WithDuration(seconds float64) ContentOption {
	return func(opts *ContentOptions) {
		opts.DurationSeconds = seconds
	}
}

// WithContentMetadata sets additional metadata for content creation.
func WithContentMetadata(metadata map[string]interface{}) ContentOption {
	return func(opts *ContentOptions) {
		opts.Metadata = metadata
	}
}

// ConsumeOption is a function type for configuring consumption logging.
type ConsumeOption func(*ConsumeOptions)

// ConsumeOptions contains configuration options for consumption logging.
type ConsumeOptions struct {
	// WatchDurationSeconds is how long the agent spent on the content.
	WatchDurationSeconds float64

	// CompletionPercentage is how much of the content was consumed (0-100).
	CompletionPercentage float64

	// Rating is an optional 1-5 rating.
	Rating *int

	// Feedback is optional free-form feedback text.
	Feedback string

	// LearnedConcepts lists concepts the agent reports learning.
	LearnedConcepts []string
}

// applyConsumeOptions applies consumption logging options.
func applyConsumeOptions(opts []ConsumeOption) *ConsumeOptions {
	options := &ConsumeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithWatchDuration sets the watch duration for a consumption record.
func WithWatchDuration(seconds float64) ConsumeOption {
	return func(opts *ConsumeOptions) {
		opts.WatchDurationSeconds = seconds
	}
}

// WithCompletion sets the completion percentage for a consumption record.
func WithCompletion(percentage float64) ConsumeOption {
	return func(opts *ConsumeOptions) {
		opts.CompletionPercentage = percentage
	}
}

// WithRating sets the rating for a consumption record.
func WithRating(rating int) ConsumeOption {
	return func(opts *ConsumeOptions) {
		opts.Rating = &rating
	}
}

// WithFeedback sets the feedback text for a consumption record.
func WithFeedback(feedback string) ConsumeOption {
	return func(opts *ConsumeOptions) {
		opts.Feedback = feedback
	}
}

// WithLearnedConcepts sets the learned concepts for a consumption record.
func WithLearnedConcepts(concepts ...string) ConsumeOption {
	return func(opts *ConsumeOptions) {
		opts.LearnedConcepts = concepts
	}
}

// SearchOption is a function type for configuring search and list requests.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for search and list requests.
type SearchOptions struct {
	// Limit caps the number of results.
	Limit int

	// ContentType restricts results to one content type.
	ContentType ContentType

	// Offset skips the given number of results (list requests only).
	Offset int
}

// applySearchOptions applies search options over the given default limit.
func applySearchOptions(defaultLimit int, opts []SearchOption) *SearchOptions {
	options := &SearchOptions{Limit: defaultLimit}
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit < 1 {
		options.Limit = defaultLimit
	}
	if options.Offset < 0 {
		options.Offset = 0
	}
	return options
}

// WithSearchLimit sets the result cap for a search or list request.
func WithSearchLimit(limit int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Limit = limit
	}
}

// WithSearchContentType restricts a search or list request to one content
// type.
func WithSearchContentType(contentType ContentType) SearchOption {
	return func(opts *SearchOptions) {
		opts.ContentType = contentType
	}
}

// WithSearchOffset skips the given number of results in a list request.
func WithSearchOffset(offset int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Offset = offset
	}
}
