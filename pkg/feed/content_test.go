package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavrajbux/AgentTube/pkg/feed"
	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

func TestCreateContent(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{fn: func(string) []float32 { return []float32{0.1, 0.2, 0.3} }}
	engine := newTestEngine(t, repo, feed.WithEmbedder(embedder))

	ctx := context.Background()
	content, err := engine.CreateContent(ctx, "Intro to Go", feed.ContentTypeVideo,
		feed.WithDescription("A gentle introduction"),
		feed.WithTags("go", "programming"),
		feed.WithDuration(360),
	)
	require.NoError(t, err)

	assert.NotEmpty(t, content.ID)
	assert.Equal(t, "Intro to Go", content.Title)
	assert.Equal(t, feed.ContentTypeVideo, content.Type)
	assert.Equal(t, []string{"go", "programming"}, content.Tags)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, content.Embedding)
	assert.False(t, content.CreatedAt.IsZero())

	stored, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.Title, stored.Title)
	assert.Equal(t, content.Embedding, stored.Embedding)
}

func TestCreateContent_Validation(t *testing.T) {
	engine := newTestEngine(t, newFakeRepo())
	ctx := context.Background()

	_, err := engine.CreateContent(ctx, "", feed.ContentTypeVideo)
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = engine.CreateContent(ctx, "title", feed.ContentType("hologram"))
	assert.ErrorIs(t, err, feed.ErrInvalidInput)
}

func TestCreateContent_WithoutEmbedder(t *testing.T) {
	// No provider: content is created without an embedding and stays out
	// of semantic pools.
	repo := newFakeRepo()
	engine := newTestEngine(t, repo)

	content, err := engine.CreateContent(context.Background(), "plain", feed.ContentTypeText)
	require.NoError(t, err)
	assert.Nil(t, content.Embedding)
}

func TestCreateContent_EmbedderFailureNotFatal(t *testing.T) {
	repo := newFakeRepo()
	engine := newTestEngine(t, repo, feed.WithEmbedder(&fakeEmbedder{}))

	content, err := engine.CreateContent(context.Background(), "plain", feed.ContentTypeText)
	require.NoError(t, err)
	assert.Nil(t, content.Embedding)
}

func TestGetContent_CountsView(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	require.NoError(t, repo.InsertContent(ctx, &repository.Content{
		ID: "c1", Title: "item", Type: "video",
	}))

	engine := newTestEngine(t, repo)

	_, err := engine.GetContent(ctx, "c1")
	require.NoError(t, err)
	_, err = engine.GetContent(ctx, "c1")
	require.NoError(t, err)

	stored, err := repo.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.ViewCount)
}

func TestGetContent_NotFound(t *testing.T) {
	engine := newTestEngine(t, newFakeRepo())

	_, err := engine.GetContent(context.Background(), "ghost")
	assert.ErrorIs(t, err, feed.ErrNotFound)
}

func TestListContent_RecencyOrder(t *testing.T) {
	repo := newFakeRepo()
	contents := seedContent(t, repo, 5, "video")
	engine := newTestEngine(t, repo)

	listed, err := engine.ListContent(context.Background(), feed.WithSearchLimit(3))
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, contents[4].ID, listed[0].ID)
	assert.Equal(t, contents[3].ID, listed[1].ID)

	offset, err := engine.ListContent(context.Background(),
		feed.WithSearchLimit(3), feed.WithSearchOffset(3))
	require.NoError(t, err)
	require.Len(t, offset, 2)
	assert.Equal(t, contents[1].ID, offset[0].ID)
}

func TestSearchSemantic(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	for _, c := range []*repository.Content{
		{ID: "near", Title: "near", Type: "video", Embedding: []float32{1, 0.05, 0}},
		{ID: "far", Title: "far", Type: "video", Embedding: []float32{0, 1, 0}},
	} {
		require.NoError(t, repo.InsertContent(ctx, c))
	}

	embedder := &fakeEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}
	engine := newTestEngine(t, repo, feed.WithEmbedder(embedder))

	results, err := engine.SearchSemantic(ctx, "query")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 0.01)
}

func TestSearchSemantic_ExactMatchScoresOne(t *testing.T) {
	// A stored embedding identical to the query vector sits at cosine
	// distance 0 and must surface the maximum score, above any other
	// result.
	repo := newFakeRepo()
	ctx := context.Background()
	for _, c := range []*repository.Content{
		{ID: "exact", Title: "exact", Type: "video", Embedding: []float32{1, 0, 0}},
		{ID: "orthogonal", Title: "orthogonal", Type: "video", Embedding: []float32{0, 1, 0}},
	} {
		require.NoError(t, repo.InsertContent(ctx, c))
	}

	embedder := &fakeEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}
	engine := newTestEngine(t, repo, feed.WithEmbedder(embedder))

	results, err := engine.SearchSemantic(ctx, "query")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.InDelta(t, 0.0, results[1].Score, 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchSemantic_EmptyQuery(t *testing.T) {
	engine := newTestEngine(t, newFakeRepo())

	_, err := engine.SearchSemantic(context.Background(), "")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)
}

func TestSearchSemantic_WithoutEmbedder(t *testing.T) {
	repo := newFakeRepo()
	seedContent(t, repo, 3, "video")
	engine := newTestEngine(t, repo)

	results, err := engine.SearchSemantic(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchByTags(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	for _, c := range []*repository.Content{
		{ID: "go", Title: "go", Type: "video", Tags: []string{"go", "programming"}},
		{ID: "rust", Title: "rust", Type: "video", Tags: []string{"rust"}},
		{ID: "cooking", Title: "cooking", Type: "video", Tags: []string{"food"}},
	} {
		require.NoError(t, repo.InsertContent(ctx, c))
	}

	engine := newTestEngine(t, repo)

	results, err := engine.SearchByTags(ctx, []string{"go", "rust"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Whitespace-only tag lists are rejected.
	_, err = engine.SearchByTags(ctx, []string{"  ", ""})
	assert.ErrorIs(t, err, feed.ErrInvalidInput)
}
