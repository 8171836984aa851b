// Package mysql provides a MySQL implementation of the content repository.
//
// MySQL has no native vector type, so embeddings are stored as JSON text
// and nearest-neighbor queries rank the candidate pool in memory, like the
// SQLite backend. An auto-increment sequence column preserves insertion
// order for deterministic scans.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

// Client implements repository.Repository using MySQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a MySQL repository.
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
}

// NewClient creates a new MySQL repository client and initializes the schema.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{db: db}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) initTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS content (
			id VARCHAR(64) PRIMARY KEY,
			seq BIGINT AUTO_INCREMENT UNIQUE,
			title VARCHAR(512) NOT NULL,
			description TEXT,
			content_type VARCHAR(32) NOT NULL,
			source_url VARCHAR(2048),
			transcript LONGTEXT,
			raw_text LONGTEXT,
			summary TEXT,
			tags TEXT,
			metadata TEXT,
			embedding LONGTEXT,
			duration_seconds DOUBLE NOT NULL DEFAULT 0,
			view_count BIGINT NOT NULL DEFAULT 0,
			consumption_count BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_content_type (content_type),
			INDEX idx_content_consumption (consumption_count)
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(256) NOT NULL,
			description TEXT,
			agent_type VARCHAR(64),
			api_key VARCHAR(128) NOT NULL UNIQUE,
			interests TEXT,
			preference_embedding LONGTEXT,
			total_content_consumed BIGINT NOT NULL DEFAULT 0,
			total_watch_time_seconds DOUBLE NOT NULL DEFAULT 0,
			metadata TEXT,
			created_at DATETIME(6) NOT NULL,
			last_active_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS consumptions (
			id BIGINT PRIMARY KEY,
			agent_id VARCHAR(64) NOT NULL,
			content_id VARCHAR(64) NOT NULL,
			consumed_at DATETIME(6) NOT NULL,
			watch_duration_seconds DOUBLE NOT NULL DEFAULT 0,
			completion_percentage DOUBLE NOT NULL DEFAULT 0,
			rating INTEGER,
			feedback TEXT,
			learned_concepts TEXT,
			INDEX idx_consumptions_agent (agent_id)
		)`,
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
	embeddingJSON, err := marshalVector(content.Embedding)
	if err != nil {
		return fmt.Errorf("InsertContent: %w", err)
	}
	tagsJSON, err := marshalStrings(content.Tags)
	if err != nil {
		return fmt.Errorf("InsertContent: %w", err)
	}
	metadataJSON, err := marshalMap(content.Metadata)
	if err != nil {
		return fmt.Errorf("InsertContent: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO content
		(id, title, description, content_type, source_url, transcript, raw_text, summary,
		 tags, metadata, embedding, duration_seconds, view_count, consumption_count,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		content.ID,
		content.Title,
		content.Description,
		content.Type,
		content.SourceURL,
		content.Transcript,
		content.RawText,
		content.Summary,
		tagsJSON,
		metadataJSON,
		embeddingJSON,
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
		WHERE id = ?
	`, id)

	content, err := scanContent(row)
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
	whereClause, args := buildContentWhere(&opts.Filter)

	limit := int64(opts.Limit)
	if limit <= 0 {
		// MySQL requires a LIMIT when an OFFSET is present.
		limit = maxScanLimit
	}
	args = append(args, limit, opts.Offset)

	query := fmt.Sprintf(`
		SELECT `+contentColumns+`
		FROM content
		%s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, whereClause, orderClause(opts.Order))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ScanContent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contents []*repository.Content
	for rows.Next() {
		content, err := scanContent(rows)
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

// NearestContent returns up to K content items closest to the query vector.
// Candidates are loaded in insertion order and ranked in memory.
func (c *Client) NearestContent(ctx context.Context, embedding []float32, opts *repository.NearestOptions) ([]*repository.Content, error) {
	filter := opts.Filter
	filter.RequireEmbedding = true

	pool, err := c.ScanContent(ctx, &repository.ScanOptions{
		Filter: filter,
		Order:  repository.OrderInsertion,
	})
	if err != nil {
		return nil, fmt.Errorf("NearestContent: %w", err)
	}

	return repository.Nearest(pool, embedding, opts.K), nil
}

// CountContent counts content matching the filter.
func (c *Client) CountContent(ctx context.Context, filter *repository.ContentFilter) (int, error) {
	whereClause, args := buildContentWhere(filter)

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

	query := fmt.Sprintf(`UPDATE content SET %s = %s + ?, updated_at = ? WHERE id = ?`, column, column)
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
	embeddingJSON, err := marshalVector(agent.PreferenceVector)
	if err != nil {
		return fmt.Errorf("InsertAgent: %w", err)
	}
	interestsJSON, err := marshalStrings(agent.Interests)
	if err != nil {
		return fmt.Errorf("InsertAgent: %w", err)
	}
	metadataJSON, err := marshalMap(agent.Metadata)
	if err != nil {
		return fmt.Errorf("InsertAgent: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO agents
		(id, name, description, agent_type, api_key, interests, preference_embedding,
		 total_content_consumed, total_watch_time_seconds, metadata, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		agent.ID,
		agent.Name,
		agent.Description,
		agent.AgentType,
		agent.APIKey,
		interestsJSON,
		embeddingJSON,
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
	return c.getAgentWhere(ctx, "GetAgent", "id = ?", id)
}

// GetAgentByAPIKey retrieves an agent by its API key.
func (c *Client) GetAgentByAPIKey(ctx context.Context, apiKey string) (*repository.Agent, error) {
	return c.getAgentWhere(ctx, "GetAgentByAPIKey", "api_key = ?", apiKey)
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
		SET total_content_consumed = total_content_consumed + ?,
		    total_watch_time_seconds = total_watch_time_seconds + ?,
		    last_active_at = ?
		WHERE id = ?
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
	_, err := c.db.ExecContext(ctx, `UPDATE agents SET last_active_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("TouchAgent: %w", err)
	}
	return nil
}

// InsertConsumption appends a consumption record.
func (c *Client) InsertConsumption(ctx context.Context, record *repository.Consumption) error {
	conceptsJSON, err := marshalStrings(record.LearnedConcepts)
	if err != nil {
		return fmt.Errorf("InsertConsumption: %w", err)
	}

	var rating sql.NullInt64
	if record.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*record.Rating), Valid: true}
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO consumptions
		(id, agent_id, content_id, consumed_at, watch_duration_seconds,
		 completion_percentage, rating, feedback, learned_concepts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.AgentID,
		record.ContentID,
		record.ConsumedAt,
		record.WatchDurationSeconds,
		record.CompletionPercentage,
		rating,
		record.Feedback,
		conceptsJSON,
	)
	if err != nil {
		return fmt.Errorf("InsertConsumption: %w", err)
	}

	return nil
}

// ListConsumptions returns the agent's consumption records, most recent first.
func (c *Client) ListConsumptions(ctx context.Context, agentID string, limit int) ([]*repository.Consumption, error) {
	capped := int64(limit)
	if capped <= 0 {
		capped = maxScanLimit
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, agent_id, content_id, consumed_at, watch_duration_seconds,
		       completion_percentage, rating, feedback, learned_concepts
		FROM consumptions
		WHERE agent_id = ?
		ORDER BY consumed_at DESC, id DESC
		LIMIT ?
	`, agentID, capped)
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
	rows, err := c.db.QueryContext(ctx, `SELECT content_id FROM consumptions WHERE agent_id = ?`, agentID)
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
