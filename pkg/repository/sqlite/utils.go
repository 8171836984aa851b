package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

const contentColumns = `id, title, description, content_type, source_url, transcript, raw_text, summary,
		       tags, metadata, embedding, duration_seconds, view_count, consumption_count,
		       created_at, updated_at`

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// buildContentWhere builds the WHERE clause and arguments for a content filter.
func buildContentWhere(filter *repository.ContentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter == nil {
		return "", args
	}

	if filter.Type != "" {
		conditions = append(conditions, "content_type = ?")
		args = append(args, filter.Type)
	}

	if len(filter.ExcludeIDs) > 0 {
		placeholders := make([]string, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf("id NOT IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.RequireEmbedding {
		conditions = append(conditions, "embedding IS NOT NULL")
	}

	if len(filter.TagsAny) > 0 {
		// Tags are stored as a JSON array, so a quoted substring match finds
		// exact tag membership.
		tagConditions := make([]string, len(filter.TagsAny))
		for i, tag := range filter.TagsAny {
			tagConditions[i] = "tags LIKE ?"
			args = append(args, `%"`+tag+`"%`)
		}
		conditions = append(conditions, "("+strings.Join(tagConditions, " OR ")+")")
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause maps a repository order to a deterministic ORDER BY expression.
// The rowid tiebreak keeps equal-rank rows in insertion order.
func orderClause(order repository.Order) string {
	switch order {
	case repository.OrderPopularity:
		return "consumption_count DESC, rowid ASC"
	case repository.OrderRecency:
		return "created_at DESC, rowid ASC"
	default:
		return "rowid ASC"
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

func marshalVector(vector []float32) (interface{}, error) {
	if vector == nil {
		return nil, nil
	}
	data, err := json.Marshal(vector)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
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

func unmarshalVector(raw sql.NullString) ([]float32, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var vector []float32
	if err := json.Unmarshal([]byte(raw.String), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
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

// scanContent scans a content row into a repository.Content.
func scanContent(scanner rowScanner) (*repository.Content, error) {
	var content repository.Content
	var tagsJSON, metadataJSON string
	var embeddingJSON sql.NullString

	err := scanner.Scan(
		&content.ID,
		&content.Title,
		&content.Description,
		&content.Type,
		&content.SourceURL,
		&content.Transcript,
		&content.RawText,
		&content.Summary,
		&tagsJSON,
		&metadataJSON,
		&embeddingJSON,
		&content.DurationSeconds,
		&content.ViewCount,
		&content.ConsumptionCount,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if content.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, err
	}
	if content.Metadata, err = unmarshalMap(metadataJSON); err != nil {
		return nil, err
	}
	if content.Embedding, err = unmarshalVector(embeddingJSON); err != nil {
		return nil, err
	}

	return &content, nil
}

// scanAgent scans an agent row into a repository.Agent.
func scanAgent(scanner rowScanner) (*repository.Agent, error) {
	var agent repository.Agent
	var interestsJSON, metadataJSON string
	var embeddingJSON sql.NullString

	err := scanner.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Description,
		&agent.AgentType,
		&agent.APIKey,
		&interestsJSON,
		&embeddingJSON,
		&agent.TotalContentConsumed,
		&agent.TotalWatchTimeSeconds,
		&metadataJSON,
		&agent.CreatedAt,
		&agent.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}

	if agent.Interests, err = unmarshalStrings(interestsJSON); err != nil {
		return nil, err
	}
	if agent.Metadata, err = unmarshalMap(metadataJSON); err != nil {
		return nil, err
	}
	if agent.PreferenceVector, err = unmarshalVector(embeddingJSON); err != nil {
		return nil, err
	}

	return &agent, nil
}

// scanConsumption scans a consumption row into a repository.Consumption.
func scanConsumption(scanner rowScanner) (*repository.Consumption, error) {
	var record repository.Consumption
	var conceptsJSON string
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
		&conceptsJSON,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		value := int(rating.Int64)
		record.Rating = &value
	}
	if record.LearnedConcepts, err = unmarshalStrings(conceptsJSON); err != nil {
		return nil, err
	}

	return &record, nil
}
