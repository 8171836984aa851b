package feed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// CreateContent creates a content item.
//
// An embedding is generated from the item's textual fields (title,
// description, raw text, tags). If the embedding provider is unavailable or
// fails, the content is created without an embedding and is simply excluded
// from semantic pools; provider failure is never fatal to creation.
//
// Example:
//
//	content, err := engine.CreateContent(ctx, "Intro to Go", feed.ContentTypeVideo,
//	    feed.WithDescription("A gentle introduction"),
//	    feed.WithTags("go", "programming"),
//	)
func (e *Engine) CreateContent(ctx context.Context, title string, contentType ContentType, opts ...ContentOption) (*Content, error) {
	if title == "" {
		return nil, NewFeedError("CreateContent", ErrInvalidInput)
	}
	if !ValidContentType(contentType) {
		return nil, NewFeedError("CreateContent", ErrInvalidInput)
	}

	options := applyContentOptions(opts)
	now := time.Now().UTC()

	content := &Content{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     options.Description,
		Type:            contentType,
		SourceURL:       options.SourceURL,
		Transcript:      options.Transcript,
		RawText:         options.RawText,
		Summary:         options.Summary,
		Tags:            options.Tags,
		Metadata:        options.Metadata,
		DurationSeconds: options.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	content.Embedding = e.embed(ctx, embedText(content))

	if err := e.repo.InsertContent(ctx, toRepositoryContent(content)); err != nil {
		return nil, NewFeedError("CreateContent", err)
	}

	return content, nil
}

// GetContent retrieves a content item by ID and counts the view.
//
// The view counter is incremented as an atomic repository-side add.
// Returns ErrNotFound when no such content exists.
func (e *Engine) GetContent(ctx context.Context, id string) (*Content, error) {
	content, err := e.repo.GetContent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewFeedError("GetContent", ErrNotFound)
		}
		return nil, NewFeedError("GetContent", err)
	}

	if err := e.repo.IncrementContent(ctx, id, repository.FieldViewCount, 1); err != nil {
		return nil, NewFeedError("GetContent", err)
	}

	return fromRepositoryContent(content), nil
}

// ListContent returns content ordered by recency.
//
// Supports WithSearchLimit, WithSearchOffset and WithSearchContentType.
func (e *Engine) ListContent(ctx context.Context, opts ...SearchOption) ([]*Content, error) {
	options := applySearchOptions(50, opts)

	contents, err := e.repo.ScanContent(ctx, &repository.ScanOptions{
		Filter: repository.ContentFilter{Type: string(options.ContentType)},
		Order:  repository.OrderRecency,
		Offset: options.Offset,
		Limit:  options.Limit,
	})
	if err != nil {
		return nil, NewFeedError("ListContent", err)
	}

	return fromRepositoryContents(contents), nil
}

// SearchSemantic finds content by meaning rather than keywords.
//
// The query text is embedded and matched against content embeddings by
// cosine distance; every result carries a Score of 1 - distance. Returns an
// empty slice when the embedding provider is unavailable or fails, since a
// semantic query without a vector has no answer.
func (e *Engine) SearchSemantic(ctx context.Context, query string, opts ...SearchOption) ([]*Content, error) {
	if query == "" {
		return nil, NewFeedError("SearchSemantic", ErrInvalidInput)
	}

	options := applySearchOptions(20, opts)

	queryVector := e.embed(ctx, query)
	if queryVector == nil {
		return []*Content{}, nil
	}

	results, err := e.repo.NearestContent(ctx, queryVector, &repository.NearestOptions{
		Filter: repository.ContentFilter{Type: string(options.ContentType)},
		K:      options.Limit,
	})
	if err != nil {
		return nil, NewFeedError("SearchSemantic", err)
	}

	return fromRepositoryContents(results), nil
}

// SearchByTags returns content carrying at least one of the given tags,
// ordered by recency.
func (e *Engine) SearchByTags(ctx context.Context, tags []string, opts ...SearchOption) ([]*Content, error) {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return nil, NewFeedError("SearchByTags", ErrInvalidInput)
	}

	options := applySearchOptions(20, opts)

	contents, err := e.repo.ScanContent(ctx, &repository.ScanOptions{
		Filter: repository.ContentFilter{
			Type:    string(options.ContentType),
			TagsAny: cleaned,
		},
		Order: repository.OrderRecency,
		Limit: options.Limit,
	})
	if err != nil {
		return nil, NewFeedError("SearchByTags", err)
	}

	return fromRepositoryContents(contents), nil
}

// embedText concatenates the textual fields an embedding should represent.
func embedText(content *Content) string {
	parts := []string{content.Title}
	if content.Description != "" {
		parts = append(parts, content.Description)
	}
	if content.RawText != "" {
		parts = append(parts, content.RawText)
	}
	if len(content.Tags) > 0 {
		parts = append(parts, strings.Join(content.Tags, " "))
	}
	return strings.Join(parts, " ")
}
