package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/keshavrajbux/AgentTube/pkg/embedder"
	openaiEmbedder "github.com/keshavrajbux/AgentTube/pkg/embedder/openai"
	"github.com/keshavrajbux/AgentTube/pkg/repository"
	mysqlRepo "github.com/keshavrajbux/AgentTube/pkg/repository/mysql"
	postgresRepo "github.com/keshavrajbux/AgentTube/pkg/repository/postgres"
	sqliteRepo "github.com/keshavrajbux/AgentTube/pkg/repository/sqlite"
)

// Engine is the AgentTube feed generation engine.
//
// It combines a content repository, an optional embedding provider, and a
// set of ranking strategies into paginated, personalized feed pages:
//   - Semantic ranking over preference vectors
//   - Trending and recency orderings
//   - Random discovery
//   - Consumption-history exclusion
//
// The engine keeps no mutable in-process state beyond its collaborators, so
// it is safe for concurrent use from multiple goroutines.
//
// Example usage:
//
//	config, _ := feed.LoadConfigFromEnv()
//	engine, _ := feed.NewEngine(config)
//	defer engine.Close()
//
//	page, _ := engine.GetFeed(ctx,
//	    feed.WithAgent(agentID),
//	    feed.WithLimit(10),
//	)
type Engine struct {
	// config contains the engine configuration (nil when the engine was
	// assembled from injected collaborators).
	config *Config

	// repo is the content repository.
	repo repository.Repository

	// embedder is the embedding provider. Nil when no provider is
	// configured; the engine then degrades to non-semantic strategies.
	embedder embedder.Provider

	// codec encodes and decodes pagination cursors.
	codec CursorCodec

	// newRand produces a fresh random source per request, so concurrent
	// requests never interfere with each other's determinism.
	newRand func() *rand.Rand

	// snowflakeNode generates unique IDs for consumption records.
	snowflakeNode *snowflake.Node
}

// Option is a function type for configuring the engine itself.
type Option func(*Engine)

// WithRepository injects a repository, overriding the configured backend.
//
// Primarily used to back the engine with a test double.
func WithRepository(repo repository.Repository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithEmbedder injects an embedding provider, overriding the configured one.
func WithEmbedder(provider embedder.Provider) Option {
	return func(e *Engine) {
		e.embedder = provider
	}
}

// WithRandFactory injects the per-request random source factory.
//
// The default factory seeds from the wall clock. Tests inject a fixed-seed
// factory to force either branch of the default-strategy coin flip and to
// make discovery shuffles reproducible.
func WithRandFactory(factory func() *rand.Rand) Option {
	return func(e *Engine) {
		e.newRand = factory
	}
}

// NewEngine creates a new feed engine.
//
// The engine is initialized with:
//   - A content repository (SQLite, PostgreSQL, or MySQL)
//   - An embedding provider (OpenAI), when one is configured
//
// A missing or failing embedding provider is not fatal: the engine is
// created without one and all semantic features degrade to their
// non-semantic fallbacks.
//
// cfg may be nil when both a repository and an embedder (or explicitly no
// embedder) are injected through options.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	engine := &Engine{
		config:  cfg,
		newRand: defaultRandFactory,
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.repo == nil {
		if cfg == nil {
			return nil, NewFeedError("NewEngine", ErrInvalidConfig)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		repo, err := initRepository(cfg.Repository)
		if err != nil {
			return nil, err
		}
		engine.repo = repo
	}

	if engine.embedder == nil && cfg != nil && cfg.Embedder.Provider != "" {
		provider, err := initEmbedder(cfg.Embedder)
		if err != nil {
			return nil, err
		}
		engine.embedder = provider
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewFeedError("NewEngine", err)
	}
	engine.snowflakeNode = node

	return engine, nil
}

// Close closes the engine and releases all resources.
//
// Returns the first error encountered during cleanup.
func (e *Engine) Close() error {
	var errs []error

	if e.repo != nil {
		if err := e.repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}

// embed generates an embedding for the given text.
//
// Returns nil without error when no provider is configured, when the text
// is empty, or when the provider fails: an absent vector is an acceptable
// degraded state everywhere the engine embeds text.
func (e *Engine) embed(ctx context.Context, text string) []float32 {
	if e.embedder == nil || text == "" {
		return nil
	}
	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vector
}

// defaultRandFactory seeds a fresh random source from the wall clock.
func defaultRandFactory() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// initRepository initializes the repository backend.
func initRepository(cfg RepositoryConfig) (repository.Repository, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteRepo.NewClient(&sqliteRepo.Config{
			DBPath: stringValue(cfg.Config, "db_path"),
		})
	case "postgres":
		sslMode := stringValue(cfg.Config, "ssl_mode")
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgresRepo.NewClient(&postgresRepo.Config{
			Host:          stringValue(cfg.Config, "host"),
			Port:          intValue(cfg.Config, "port"),
			User:          stringValue(cfg.Config, "user"),
			Password:      stringValue(cfg.Config, "password"),
			DBName:        stringValue(cfg.Config, "db_name"),
			EmbeddingDims: intValue(cfg.Config, "embedding_dims"),
			SSLMode:       sslMode,
		})
	case "mysql":
		return mysqlRepo.NewClient(&mysqlRepo.Config{
			Host:     stringValue(cfg.Config, "host"),
			Port:     intValue(cfg.Config, "port"),
			User:     stringValue(cfg.Config, "user"),
			Password: stringValue(cfg.Config, "password"),
			DBName:   stringValue(cfg.Config, "db_name"),
		})
	default:
		return nil, NewFeedError("initRepository", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedding provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, NewFeedError("initEmbedder", ErrInvalidConfig)
	}
}

// stringValue reads a string out of a provider config map.
func stringValue(config map[string]interface{}, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}

// intValue reads an int out of a provider config map.
func intValue(config map[string]interface{}, key string) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
