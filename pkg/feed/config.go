package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a feed engine.
//
// It includes settings for:
//   - The content repository (for content, agent, and consumption storage)
//   - The embedding provider (for semantic ranking; optional)
//
// Example:
//
//	config := &feed.Config{
//	    Repository: feed.RepositoryConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./agenttube.db",
//	        },
//	    },
//	    Embedder: feed.EmbedderConfig{
//	        Provider:   "openai",
//	        APIKey:     "sk-...",
//	        Model:      "text-embedding-3-small",
//	        Dimensions: 1536,
//	    },
//	}
type Config struct {
	// Repository contains content repository configuration.
	Repository RepositoryConfig `json:"repository"`

	// Embedder contains embedding provider configuration.
	// An empty provider disables semantic features; the engine then
	// serves only the default, trending, and discover strategies.
	Embedder EmbedderConfig `json:"embedder"`
}

// RepositoryConfig contains configuration for the content repository.
//
// Supported providers: sqlite, postgres, mysql
type RepositoryConfig struct {
	// Provider is the repository backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, embedding_dims, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai
type EmbedderConfig struct {
	// Provider is the embedding provider name. Empty disables embedding.
	Provider string `json:"provider,omitempty"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key,omitempty"`

	// Model is the embedding model name (e.g. "text-embedding-3-small").
	Model string `json:"model,omitempty"`

	// BaseURL is the base URL for the API (provider default if empty).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the fixed dimensionality of embedding vectors.
	Dimensions int `json:"dimensions,omitempty"`
}

// Validate validates the configuration.
//
// The repository provider is required; the embedder section is optional.
func (c *Config) Validate() error {
	if c.Repository.Provider == "" {
		return NewFeedError("Validate", ErrInvalidConfig)
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL,
//     EMBEDDING_BASE_URL, EMBEDDING_DIMENSIONS
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := feed.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	dims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMENSIONS", "1536"))

	repositoryConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		repositoryConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./agenttube.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))

		repositoryConfig = map[string]interface{}{
			"host":           getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":           port,
			"user":           getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":       os.Getenv("POSTGRES_PASSWORD"),
			"db_name":        getEnvOrDefault("POSTGRES_DATABASE", "agenttube"),
			"embedding_dims": dims,
			"ssl_mode":       getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		repositoryConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "agenttube"),
		}
	}

	embedderProvider := os.Getenv("EMBEDDING_PROVIDER")
	var embedderBaseURL string
	if embedderProvider == "openai" {
		embedderBaseURL = os.Getenv("OPENAI_EMBEDDING_BASE_URL")
	} else {
		embedderBaseURL = os.Getenv("EMBEDDING_BASE_URL")
	}

	config := &Config{
		Repository: RepositoryConfig{
			Provider: provider,
			Config:   repositoryConfig,
		},
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:    embedderBaseURL,
			Dimensions: dims,
		},
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFeedError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewFeedError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search checks the current directory first, then walks up to 5
// directory levels. Returns the first file found.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
