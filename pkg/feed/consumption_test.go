package feed_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavrajbux/AgentTube/pkg/feed"
	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

func setupConsumptionTest(t *testing.T) (*feed.Engine, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	ctx := context.Background()
	require.NoError(t, repo.InsertContent(ctx, &repository.Content{
		ID: "c1", Title: "item", Type: "video",
	}))
	require.NoError(t, repo.InsertAgent(ctx, &repository.Agent{
		ID: "agent-1", Name: "scholar",
	}))
	return newTestEngine(t, repo), repo
}

func TestLogConsumption(t *testing.T) {
	engine, repo := setupConsumptionTest(t)
	ctx := context.Background()

	record, err := engine.LogConsumption(ctx, "agent-1", "c1",
		feed.WithWatchDuration(42.5),
		feed.WithCompletion(100),
		feed.WithRating(5),
		feed.WithFeedback("great"),
		feed.WithLearnedConcepts("goroutines"),
	)
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, "agent-1", record.AgentID)
	assert.Equal(t, "c1", record.ContentID)
	assert.Equal(t, 42.5, record.WatchDurationSeconds)
	require.NotNil(t, record.Rating)
	assert.Equal(t, 5, *record.Rating)
	assert.False(t, record.ConsumedAt.IsZero())

	content, err := repo.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), content.ConsumptionCount)

	agent, err := repo.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agent.TotalContentConsumed)
	assert.Equal(t, 42.5, agent.TotalWatchTimeSeconds)
}

func TestLogConsumption_Validation(t *testing.T) {
	engine, _ := setupConsumptionTest(t)
	ctx := context.Background()

	_, err := engine.LogConsumption(ctx, "", "c1")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = engine.LogConsumption(ctx, "agent-1", "")
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	_, err = engine.LogConsumption(ctx, "agent-1", "ghost")
	assert.ErrorIs(t, err, feed.ErrNotFound)
}

func TestLogConsumption_ConcurrentCounters(t *testing.T) {
	// M concurrent consumptions of one item must raise its popularity
	// counter by exactly M.
	engine, repo := setupConsumptionTest(t)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.LogConsumption(ctx, "agent-1", "c1",
				feed.WithWatchDuration(1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	content, err := repo.GetContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), content.ConsumptionCount)

	agent, err := repo.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), agent.TotalContentConsumed)
	assert.Equal(t, float64(workers), agent.TotalWatchTimeSeconds)
}

func TestLogConsumption_DistinctRecordIDs(t *testing.T) {
	engine, repo := setupConsumptionTest(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 10; i++ {
		record, err := engine.LogConsumption(ctx, "agent-1", "c1")
		require.NoError(t, err)
		assert.False(t, seen[record.ID])
		seen[record.ID] = true
	}
	assert.Len(t, repo.consumptions, 10)
}

func TestConsumptionHistory(t *testing.T) {
	engine, _ := setupConsumptionTest(t)
	ctx := context.Background()

	var recorded []*feed.Consumption
	for i := 0; i < 5; i++ {
		record, err := engine.LogConsumption(ctx, "agent-1", "c1")
		require.NoError(t, err)
		recorded = append(recorded, record)
	}

	history, err := engine.ConsumptionHistory(ctx, "agent-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Most recent first; snowflake IDs ascend with time.
	assert.Equal(t, recorded[4].ID, history[0].ID)

	_, err = engine.ConsumptionHistory(ctx, "", 10)
	assert.ErrorIs(t, err, feed.ErrInvalidInput)

	empty, err := engine.ConsumptionHistory(ctx, "other-agent", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
