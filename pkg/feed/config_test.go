package feed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavrajbux/AgentTube/pkg/feed"
)

func TestConfig_Validate(t *testing.T) {
	valid := &feed.Config{
		Repository: feed.RepositoryConfig{
			Provider: "sqlite",
			Config:   map[string]interface{}{"db_path": "./agenttube.db"},
		},
	}
	assert.NoError(t, valid.Validate())

	missing := &feed.Config{}
	assert.ErrorIs(t, missing.Validate(), feed.ErrInvalidConfig)
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("EMBEDDING_DIMENSIONS", "")

	config, err := feed.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Repository.Provider)
	assert.Equal(t, "", config.Embedder.Provider)
	assert.Equal(t, "text-embedding-3-small", config.Embedder.Model)
	assert.Equal(t, 1536, config.Embedder.Dimensions)
}

func TestLoadConfigFromEnv_Postgres(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "agenttube")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DATABASE", "feeds")
	t.Setenv("EMBEDDING_DIMENSIONS", "768")

	config, err := feed.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", config.Repository.Provider)
	assert.Equal(t, "db.internal", config.Repository.Config["host"])
	assert.Equal(t, 5433, config.Repository.Config["port"])
	assert.Equal(t, "agenttube", config.Repository.Config["user"])
	assert.Equal(t, "feeds", config.Repository.Config["db_name"])
	assert.Equal(t, 768, config.Repository.Config["embedding_dims"])
}

func TestLoadConfigFromEnv_Embedder(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "sqlite")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("EMBEDDING_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-large")

	config, err := feed.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.Embedder.Provider)
	assert.Equal(t, "sk-test", config.Embedder.APIKey)
	assert.Equal(t, "text-embedding-3-large", config.Embedder.Model)
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"repository": {
			"provider": "sqlite",
			"config": {"db_path": "/tmp/agenttube.db"}
		},
		"embedder": {
			"provider": "openai",
			"api_key": "sk-test",
			"dimensions": 1536
		}
	}`), 0644))

	config, err := feed.LoadConfigFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", config.Repository.Provider)
	assert.Equal(t, "/tmp/agenttube.db", config.Repository.Config["db_path"])
	assert.Equal(t, "openai", config.Embedder.Provider)
	assert.Equal(t, 1536, config.Embedder.Dimensions)
}

func TestLoadConfigFromJSON_MissingFile(t *testing.T) {
	_, err := feed.LoadConfigFromJSON("/no/such/config.json")
	assert.Error(t, err)
}
