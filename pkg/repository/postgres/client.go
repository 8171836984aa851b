// Package postgres provides a PostgreSQL implementation of the content
// repository backed by the pgvector extension.
//
// Unlike the SQLite backend, nearest-neighbor queries run inside the
// database using the cosine distance operator, so candidate pools never
// leave the server.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// Client implements repository.Repository using PostgreSQL with pgvector.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a PostgreSQL repository.
type Config struct {
	// Host is the database server host.
	Host string

	// Port is the database server port.
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// SSLMode is the libpq sslmode setting. Defaults to "disable".
	SSLMode string

	// EmbeddingDims is the dimensionality of stored vectors.
	// Defaults to 1536.
	EmbeddingDims int
}

// NewClient creates a new PostgreSQL repository client and initializes
// the schema, including the pgvector extension.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dims := cfg.EmbeddingDims
	if dims <= 0 {
		dims = 1536
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	client := &Client{db: db}

	if err := client.initTables(context.Background(), dims); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) initTables(ctx context.Context, dims int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS content (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			transcript TEXT NOT NULL DEFAULT '',
			raw_text TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d),
			duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			view_count BIGINT NOT NULL DEFAULT 0,
			consumption_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, dims),
		`CREATE INDEX IF NOT EXISTS idx_content_type ON content(content_type)`,
		`CREATE INDEX IF NOT EXISTS idx_content_consumption ON content(consumption_count DESC)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			agent_type TEXT NOT NULL DEFAULT '',
			api_key TEXT NOT NULL UNIQUE,
			interests TEXT[] NOT NULL DEFAULT '{}',
			preference_embedding vector(%d),
			total_content_consumed BIGINT NOT NULL DEFAULT 0,
			total_watch_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			last_active_at TIMESTAMPTZ NOT NULL
		)`, dims),
		`CREATE TABLE IF NOT EXISTS consumptions (
			id BIGINT PRIMARY KEY,
			agent_id TEXT NOT NULL REFERENCES agents(id),
			content_id TEXT NOT NULL REFERENCES content(id),
			consumed_at TIMESTAMPTZ NOT NULL,
			watch_duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			completion_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating INTEGER,
			feedback TEXT NOT NULL DEFAULT '',
			learned_concepts TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_agent ON consumptions(agent_id)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}

	return nil
}

// InsertContent inserts a content item.
func (c *Client) InsertContent(ctx context.Context, content *repository.Content) error {
	metadataJSON, err := marshalMap(content.Metadata)
	if err != nil {
		return fmt.Errorf("InsertContent: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO content
		(id, title, description, content_type, source_url, transcript, raw_text, summary,
		 tags, metadata, embedding, duration_seconds, view_count, consumption_count,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		content.ID,
		content.Title,
		content.Description,
		content.Type,
		content.SourceURL,
		content.Transcript,
		content.RawText,
		content.Summary,
		pq.Array(stringsOrEmpty(content.Tags)),
		metadataJSON,
		nullableVector(content.Embedding),
		content.DurationSeconds,
		content.ViewCount,
		content.ConsumptionCount,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertContent: %w", err)
	}

	return nil
}

// GetContent retrieves a content item by ID.
func (c *Client) GetContent(ctx context.Context, id string) (*repository.Content, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE id = $1
	`, id)

	content, err := scanContent(row, false)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetContent: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetContent: %w", err)
	}

	return content, nil
}

// ScanContent returns content matching the filter in the requested order.
func (c *Client) ScanContent(ctx context.Context, opts *repository.ScanOptions) ([]*repository.Content, error) {
	whereClause, args := buildContentWhere(&opts.Filter, 1)

	query := fmt.Sprintf(`
		SELECT `+contentColumns+`
		FROM content
		%s
		ORDER BY %s
		OFFSET $%d
	`, whereClause, orderClause(opts.Order), len(args)+1)
	args = append(args, opts.Offset)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ScanContent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contents []*repository.Content
	for rows.Next() {
		content, err := scanContent(rows, false)
		if err != nil {
			return nil, fmt.Errorf("ScanContent: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ScanContent: %w", err)
	}

	return contents, nil
}

// NearestContent returns up to K content items closest to the query vector,
// ranked by the pgvector cosine distance operator inside the database.
func (c *Client) NearestContent(ctx context.Context, embedding []float32, opts *repository.NearestOptions) ([]*repository.Content, error) {
	if opts.K <= 0 {
		return nil, nil
	}

	filter := opts.Filter
	filter.RequireEmbedding = true

	queryVector := pgvector.NewVector(embedding)
	whereClause, args := buildContentWhere(&filter, 2)
	args = append([]interface{}{queryVector}, args...)

	query := fmt.Sprintf(`
		SELECT `+contentColumns+`, embedding <=> $1 AS distance
		FROM content
		%s
		ORDER BY embedding <=> $1 ASC, seq ASC
		LIMIT $%d
	`, whereClause, len(args)+1)
	args = append(args, opts.K)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("NearestContent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contents []*repository.Content
	for rows.Next() {
		content, err := scanContent(rows, true)
		if err != nil {
			return nil, fmt.Errorf("NearestContent: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("NearestContent: %w", err)
	}

	return contents, nil
}

// CountContent counts content matching the filter.
func (c *Client) CountContent(ctx context.Context, filter *repository.ContentFilter) (int, error) {
	whereClause, args := buildContentWhere(filter, 1)

	var count int
	err := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM content %s`, whereClause), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountContent: %w", err)
	}

	return count, nil
}

// IncrementContent atomically adds delta to a content counter.
func (c *Client) IncrementContent(ctx context.Context, id string, field repository.CounterField, delta int64) error {
	column, err := counterColumn(field)
	if err != nil {
		return fmt.Errorf("IncrementContent: %w", err)
	}

	query := fmt.Sprintf(`UPDATE content SET %s = %s + $1, updated_at = $2 WHERE id = $3`, column, column)
	result, err := c.db.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("IncrementContent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("IncrementContent: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("IncrementContent: %w", repository.ErrNotFound)
	}

	return nil
}

// InsertAgent inserts an agent.
func (c *Client) InsertAgent(ctx context.Context, agent *repository.Agent) error {
	metadataJSON, err := marshalMap(agent.Metadata)
	if err != nil {
		return fmt.Errorf("InsertAgent: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO agents
		(id, name, description, agent_type, api_key, interests, preference_embedding,
		 total_content_consumed, total_watch_time_seconds, metadata, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		agent.ID,
		agent.Name,
		agent.Description,
		agent.AgentType,
		agent.APIKey,
		pq.Array(stringsOrEmpty(agent.Interests)),
		nullableVector(agent.PreferenceVector),
		agent.TotalContentConsumed,
		agent.TotalWatchTimeSeconds,
		metadataJSON,
		agent.CreatedAt,
		agent.LastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("InsertAgent: %w", err)
	}

	return nil
}

// GetAgent retrieves an agent by ID.
func (c *Client) GetAgent(ctx context.Context, id string) (*repository.Agent, error) {
	return c.getAgentWhere(ctx, "GetAgent", "id = $1", id)
}

// GetAgentByAPIKey retrieves an agent by its API key.
func (c *Client) GetAgentByAPIKey(ctx context.Context, apiKey string) (*repository.Agent, error) {
	return c.getAgentWhere(ctx, "GetAgentByAPIKey", "api_key = $1", apiKey)
}

func (c *Client) getAgentWhere(ctx context.Context, op, condition string, arg interface{}) (*repository.Agent, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, description, agent_type, api_key, interests, preference_embedding,
		       total_content_consumed, total_watch_time_seconds, metadata, created_at, last_active_at
		FROM agents
		WHERE `+condition, arg)

	agent, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return agent, nil
}

// IncrementAgentStats atomically adds the deltas to the agent's counters
// and refreshes the last-active timestamp.
func (c *Client) IncrementAgentStats(ctx context.Context, id string, consumedDelta int64, watchDelta float64) error {
	result, err := c.db.ExecContext(ctx, `
		UPDATE agents
		SET total_content_consumed = total_content_consumed + $1,
		    total_watch_time_seconds = total_watch_time_seconds + $2,
		    last_active_at = $3
		WHERE id = $4
	`, consumedDelta, watchDelta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("IncrementAgentStats: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("IncrementAgentStats: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("IncrementAgentStats: %w", repository.ErrNotFound)
	}

	return nil
}

// TouchAgent refreshes the agent's last-active timestamp.
func (c *Client) TouchAgent(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE agents SET last_active_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("TouchAgent: %w", err)
	}
	return nil
}

// InsertConsumption appends a consumption record.
func (c *Client) InsertConsumption(ctx context.Context, record *repository.Consumption) error {
	var rating sql.NullInt64
	if record.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*record.Rating), Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO consumptions
		(id, agent_id, content_id, consumed_at, watch_duration_seconds,
		 completion_percentage, rating, feedback, learned_concepts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.ID,
		record.AgentID,
		record.ContentID,
		record.ConsumedAt,
		record.WatchDurationSeconds,
		record.CompletionPercentage,
		rating,
		record.Feedback,
		pq.Array(stringsOrEmpty(record.LearnedConcepts)),
	)
	if err != nil {
		return fmt.Errorf("InsertConsumption: %w", err)
	}

	return nil
}

// ListConsumptions returns the agent's consumption records, most recent first.
func (c *Client) ListConsumptions(ctx context.Context, agentID string, limit int) ([]*repository.Consumption, error) {
	query := `
		SELECT id, agent_id, content_id, consumed_at, watch_duration_seconds,
		       completion_percentage, rating, feedback, learned_concepts
		FROM consumptions
		WHERE agent_id = $1
		ORDER BY consumed_at DESC, id DESC
	`
	args := []interface{}{agentID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListConsumptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*repository.Consumption
	for rows.Next() {
		record, err := scanConsumption(rows)
		if err != nil {
			return nil, fmt.Errorf("ListConsumptions: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListConsumptions: %w", err)
	}

	return records, nil
}

// ConsumedContentIDs returns the set of content IDs consumed by the agent.
func (c *Client) ConsumedContentIDs(ctx context.Context, agentID string) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT content_id FROM consumptions WHERE agent_id = $1`, agentID)
	if err != nil {
		return nil, fmt.Errorf("ConsumedContentIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ConsumedContentIDs: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ConsumedContentIDs: %w", err)
	}

	return ids, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
