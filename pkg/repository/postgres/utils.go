package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

const contentColumns = `id, title, description, content_type, source_url, transcript, raw_text, summary,
		       tags, metadata, embedding, duration_seconds, view_count, consumption_count,
		       created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nullVector scans a possibly-NULL pgvector column.
type nullVector struct {
	vec   pgvector.Vector
	valid bool
}

func (n *nullVector) Scan(src interface{}) error {
	if src == nil {
		n.valid = false
		return nil
	}
	n.valid = true
	return n.vec.Scan(src)
}

func (n *nullVector) slice() []float32 {
	if !n.valid {
		return nil
	}
	return n.vec.Slice()
}

// nullableVector converts a vector for insertion, preserving NULL for
// content without embeddings.
func nullableVector(v []float32) interface{} {
	if v == nil {
		return nil
	}
	return pgvector.NewVector(v)
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func marshalMap(m map[string]interface{}) (string, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalMap(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// buildContentWhere builds the WHERE clause for a content filter using
// numbered placeholders starting at startIndex.
func buildContentWhere(filter *repository.ContentFilter, startIndex int) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	index := startIndex

	if filter == nil {
		return "", args
	}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("content_type = $%d", index))
		args = append(args, filter.Type)
		index++
	}

	if len(filter.ExcludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("NOT (id = ANY($%d))", index))
		args = append(args, pq.Array(filter.ExcludeIDs))
		index++
	}

	if filter.RequireEmbedding {
		conditions = append(conditions, "embedding IS NOT NULL")
	}

	if len(filter.TagsAny) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags && $%d", index))
		args = append(args, pq.Array(filter.TagsAny))
		index++
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause maps a repository order to a deterministic ORDER BY expression.
// The seq tiebreak keeps equal-rank rows in insertion order.
func orderClause(order repository.Order) string {
	switch order {
	case repository.OrderPopularity:
		return "consumption_count DESC, seq ASC"
	case repository.OrderRecency:
		return "created_at DESC, seq ASC"
	default:
		return "seq ASC"
	}
}

// counterColumn maps a counter field to its column name.
func counterColumn(field repository.CounterField) (string, error) {
	switch field {
	case repository.FieldViewCount:
		return "view_count", nil
	case repository.FieldConsumptionCount:
		return "consumption_count", nil
	default:
		return "", fmt.Errorf("unknown counter field: %s", field)
	}
}

// scanContent scans a content row. When withDistance is true, the row
// carries a trailing cosine distance column from a nearest query.
func scanContent(scanner rowScanner, withDistance bool) (*repository.Content, error) {
	var content repository.Content
	var tags pq.StringArray
	var metadataJSON string
	var embedding nullVector
	var distance float64

	dest := []interface{}{
		&content.ID,
		&content.Title,
		&content.Description,
		&content.Type,
		&content.SourceURL,
		&content.Transcript,
		&content.RawText,
		&content.Summary,
		&tags,
		&metadataJSON,
		&embedding,
		&content.DurationSeconds,
		&content.ViewCount,
		&content.ConsumptionCount,
		&content.CreatedAt,
		&content.UpdatedAt,
	}
	if withDistance {
		dest = append(dest, &distance)
	}

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	if withDistance {
		content.Distance = &distance
	}

	content.Tags = tags
	content.Embedding = embedding.slice()

	metadata, err := unmarshalMap(metadataJSON)
	if err != nil {
		return nil, err
	}
	content.Metadata = metadata

	return &content, nil
}

// scanAgent scans an agent row into a repository.Agent.
func scanAgent(scanner rowScanner) (*repository.Agent, error) {
	var agent repository.Agent
	var interests pq.StringArray
	var metadataJSON string
	var embedding nullVector

	err := scanner.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Description,
		&agent.AgentType,
		&agent.APIKey,
		&interests,
		&embedding,
		&agent.TotalContentConsumed,
		&agent.TotalWatchTimeSeconds,
		&metadataJSON,
		&agent.CreatedAt,
		&agent.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}

	agent.Interests = interests
	agent.PreferenceVector = embedding.slice()

	metadata, err := unmarshalMap(metadataJSON)
	if err != nil {
		return nil, err
	}
	agent.Metadata = metadata

	return &agent, nil
}

// scanConsumption scans a consumption row into a repository.Consumption.
func scanConsumption(scanner rowScanner) (*repository.Consumption, error) {
	var record repository.Consumption
	var concepts pq.StringArray
	var rating sql.NullInt64

	err := scanner.Scan(
		&record.ID,
		&record.AgentID,
		&record.ContentID,
		&record.ConsumedAt,
		&record.WatchDurationSeconds,
		&record.CompletionPercentage,
		&rating,
		&record.Feedback,
		&concepts,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		value := int(rating.Int64)
		record.Rating = &value
	}
	record.LearnedConcepts = concepts

	return &record, nil
}
