package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
	sqliteRepo "github.com/keshavrajbux/AgentTube/pkg/repository/sqlite"
)

func setupSQLiteTest(t *testing.T) repository.Repository {
	t.Helper()

	client, err := sqliteRepo.NewClient(&sqliteRepo.Config{
		DBPath: filepath.Join(t.TempDir(), "test_agenttube.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testContent(id string, consumptionCount int64, createdAt time.Time) *repository.Content {
	return &repository.Content{
		ID:               id,
		Title:            "title " + id,
		Type:             "video",
		Tags:             []string{"go"},
		Metadata:         map[string]interface{}{"source": "test"},
		ConsumptionCount: consumptionCount,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestSQLiteClient_InsertAndGetContent(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	content := testContent("c1", 3, now)
	content.Embedding = []float32{0.1, 0.2, 0.3}

	require.NoError(t, client.InsertContent(ctx, content))

	got, err := client.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "title c1", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Equal(t, "test", got.Metadata["source"])
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
	assert.Equal(t, int64(3), got.ConsumptionCount)
}

func TestSQLiteClient_GetContentNotFound(t *testing.T) {
	client := setupSQLiteTest(t)

	_, err := client.GetContent(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteClient_NullEmbeddingRoundTrip(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, client.InsertContent(ctx, testContent("c1", 0, time.Now().UTC())))

	got, err := client.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

func TestSQLiteClient_ScanContentOrders(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, client.InsertContent(ctx, testContent("old-popular", 10, base)))
	require.NoError(t, client.InsertContent(ctx, testContent("mid", 5, base.Add(time.Hour))))
	require.NoError(t, client.InsertContent(ctx, testContent("new-quiet", 1, base.Add(2*time.Hour))))

	byPopularity, err := client.ScanContent(ctx, &repository.ScanOptions{
		Order: repository.OrderPopularity,
	})
	require.NoError(t, err)
	require.Len(t, byPopularity, 3)
	assert.Equal(t, "old-popular", byPopularity[0].ID)
	assert.Equal(t, "new-quiet", byPopularity[2].ID)

	byRecency, err := client.ScanContent(ctx, &repository.ScanOptions{
		Order: repository.OrderRecency,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-quiet", byRecency[0].ID)

	byInsertion, err := client.ScanContent(ctx, &repository.ScanOptions{
		Order: repository.OrderInsertion,
	})
	require.NoError(t, err)
	assert.Equal(t, "old-popular", byInsertion[0].ID)
}

func TestSQLiteClient_ScanContentFilterAndPaging(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		content := testContent(id, int64(10-i), base.Add(time.Duration(i)*time.Hour))
		if id == "d" {
			content.Type = "short"
		}
		require.NoError(t, client.InsertContent(ctx, content))
	}

	videos, err := client.ScanContent(ctx, &repository.ScanOptions{
		Filter: repository.ContentFilter{Type: "video"},
		Order:  repository.OrderPopularity,
	})
	require.NoError(t, err)
	assert.Len(t, videos, 3)

	excluded, err := client.ScanContent(ctx, &repository.ScanOptions{
		Filter: repository.ContentFilter{Type: "video", ExcludeIDs: []string{"a", "b"}},
		Order:  repository.OrderPopularity,
	})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, "c", excluded[0].ID)

	paged, err := client.ScanContent(ctx, &repository.ScanOptions{
		Order:  repository.OrderPopularity,
		Offset: 1,
		Limit:  2,
	})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "b", paged[0].ID)
	assert.Equal(t, "c", paged[1].ID)
}

func TestSQLiteClient_ScanContentTagsAny(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	now := time.Now().UTC()
	tagged := testContent("tagged", 0, now)
	tagged.Tags = []string{"go", "databases"}
	other := testContent("other", 0, now)
	other.Tags = []string{"cooking"}
	require.NoError(t, client.InsertContent(ctx, tagged))
	require.NoError(t, client.InsertContent(ctx, other))

	results, err := client.ScanContent(ctx, &repository.ScanOptions{
		Filter: repository.ContentFilter{TagsAny: []string{"databases", "music"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tagged", results[0].ID)
}

func TestSQLiteClient_NearestContent(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	now := time.Now().UTC()
	exact := testContent("exact", 0, now)
	exact.Embedding = []float32{1, 0, 0}
	near := testContent("near", 0, now)
	near.Embedding = []float32{1, 0.2, 0}
	far := testContent("far", 0, now)
	far.Embedding = []float32{0, 1, 0}
	blank := testContent("blank", 0, now)

	for _, c := range []*repository.Content{far, exact, blank, near} {
		require.NoError(t, client.InsertContent(ctx, c))
	}

	results, err := client.NearestContent(ctx, []float32{1, 0, 0}, &repository.NearestOptions{K: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "near", results[1].ID)
	require.NotNil(t, results[0].Distance)
	require.NotNil(t, results[1].Distance)
	assert.InDelta(t, 0, *results[0].Distance, 1e-6)
	assert.Less(t, *results[0].Distance, *results[1].Distance)
}

func TestSQLiteClient_CountContent(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, client.InsertContent(ctx, testContent("a", 0, now)))
	require.NoError(t, client.InsertContent(ctx, testContent("b", 0, now)))

	count, err := client.CountContent(ctx, &repository.ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = client.CountContent(ctx, &repository.ContentFilter{ExcludeIDs: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteClient_IncrementContent(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, client.InsertContent(ctx, testContent("c1", 0, time.Now().UTC())))

	require.NoError(t, client.IncrementContent(ctx, "c1", repository.FieldConsumptionCount, 1))
	require.NoError(t, client.IncrementContent(ctx, "c1", repository.FieldConsumptionCount, 2))
	require.NoError(t, client.IncrementContent(ctx, "c1", repository.FieldViewCount, 1))

	got, err := client.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ConsumptionCount)
	assert.Equal(t, int64(1), got.ViewCount)

	err = client.IncrementContent(ctx, "ghost", repository.FieldViewCount, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteClient_IncrementContentConcurrent(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, client.InsertContent(ctx, testContent("c1", 0, time.Now().UTC())))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = client.IncrementContent(ctx, "c1", repository.FieldConsumptionCount, 1)
		}()
	}
	wg.Wait()

	got, err := client.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.ConsumptionCount)
}

func testAgent(id string) *repository.Agent {
	now := time.Now().UTC().Truncate(time.Second)
	return &repository.Agent{
		ID:           id,
		Name:         "agent " + id,
		APIKey:       "at_key_" + id,
		Interests:    []string{"ai"},
		Metadata:     map[string]interface{}{"kind": "test"},
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func TestSQLiteClient_Agents(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	agent := testAgent("a1")
	agent.PreferenceVector = []float32{0.5, 0.5}
	require.NoError(t, client.InsertAgent(ctx, agent))

	byID, err := client.GetAgent(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "agent a1", byID.Name)
	assert.Equal(t, []float32{0.5, 0.5}, byID.PreferenceVector)

	byKey, err := client.GetAgentByAPIKey(ctx, "at_key_a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", byKey.ID)

	_, err = client.GetAgent(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = client.GetAgentByAPIKey(ctx, "at_wrong")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteClient_IncrementAgentStats(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, client.InsertAgent(ctx, testAgent("a1")))

	require.NoError(t, client.IncrementAgentStats(ctx, "a1", 1, 12.5))
	require.NoError(t, client.IncrementAgentStats(ctx, "a1", 1, 7.5))

	got, err := client.GetAgent(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalContentConsumed)
	assert.Equal(t, 20.0, got.TotalWatchTimeSeconds)

	err = client.IncrementAgentStats(ctx, "ghost", 1, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteClient_Consumptions(t *testing.T) {
	client := setupSQLiteTest(t)
	ctx := context.Background()

	require.NoError(t, client.InsertAgent(ctx, testAgent("a1")))
	require.NoError(t, client.InsertContent(ctx, testContent("c1", 0, time.Now().UTC())))
	require.NoError(t, client.InsertContent(ctx, testContent("c2", 0, time.Now().UTC())))

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rating := 4
	records := []*repository.Consumption{
		{ID: 1, AgentID: "a1", ContentID: "c1", ConsumedAt: base, WatchDurationSeconds: 10, Rating: &rating, LearnedConcepts: []string{"sql"}},
		{ID: 2, AgentID: "a1", ContentID: "c2", ConsumedAt: base.Add(time.Minute)},
		{ID: 3, AgentID: "a1", ContentID: "c1", ConsumedAt: base.Add(2 * time.Minute)},
	}
	for _, record := range records {
		require.NoError(t, client.InsertConsumption(ctx, record))
	}

	history, err := client.ListConsumptions(ctx, "a1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(3), history[0].ID)
	assert.Equal(t, int64(2), history[1].ID)

	full, err := client.ListConsumptions(ctx, "a1", 0)
	require.NoError(t, err)
	require.Len(t, full, 3)
	require.NotNil(t, full[2].Rating)
	assert.Equal(t, 4, *full[2].Rating)
	assert.Equal(t, []string{"sql"}, full[2].LearnedConcepts)

	consumed, err := client.ConsumedContentIDs(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, consumed, 2)
	_, ok := consumed["c1"]
	assert.True(t, ok)
	_, ok = consumed["c2"]
	assert.True(t, ok)
}
