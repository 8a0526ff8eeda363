package config

import (
	"time"

	"github.com/abhishekg1-gl/langgraph/internal/util"
)

// Config enumerates every recognized option of the engine. Values come from
// the environment (optionally via a .env file); anything not listed here is
// not a configuration knob.
type Config struct {
	// Core engine options.
	EmbedDim             int           // embedding dimensionality
	DefaultTopK          int           // default vector result count per query
	DefaultGraphDepth    int           // default graph traversal depth
	GenerationTimeout    time.Duration // wall-clock budget for answer generation
	ExtractTimeout       time.Duration // wall-clock budget for one extraction call
	ExtractTruncateLen   int           // per-call text truncation length (chars)
	PromptEvidenceCap    int           // max passages rendered into a prompt
	PromptPathCap        int           // max relationship paths rendered into a prompt
	ExtractBatchSize     int           // passages per extraction batch
	ChunkTokens          int           // token budget per passage at ingestion
	TraversalNeighborCap int           // neighbor cap per traversal call

	// Deployment endpoints.
	DatabaseURL string
	Port        string
	Debug       bool
}

// Load reads the configuration from the environment, applying defaults for
// every unset option.
func Load() Config {
	util.LoadEnv()

	return Config{
		EmbedDim:             util.GetEnvInt("EMBED_DIM", 1536),
		DefaultTopK:          util.GetEnvInt("DEFAULT_TOP_K", 5),
		DefaultGraphDepth:    util.GetEnvInt("DEFAULT_GRAPH_DEPTH", 2),
		GenerationTimeout:    time.Duration(util.GetEnvInt("GENERATION_TIMEOUT_SECONDS", 60)) * time.Second,
		ExtractTimeout:       time.Duration(util.GetEnvInt("EXTRACT_TIMEOUT_SECONDS", 45)) * time.Second,
		ExtractTruncateLen:   util.GetEnvInt("EXTRACT_TRUNCATE_CHARS", 4000),
		PromptEvidenceCap:    util.GetEnvInt("PROMPT_EVIDENCE_CAP", 5),
		PromptPathCap:        util.GetEnvInt("PROMPT_PATH_CAP", 10),
		ExtractBatchSize:     util.GetEnvInt("EXTRACT_BATCH_SIZE", 10),
		ChunkTokens:          util.GetEnvInt("CHUNK_TOKENS", 400),
		TraversalNeighborCap: util.GetEnvInt("TRAVERSAL_NEIGHBOR_CAP", 30),

		DatabaseURL: util.GetEnv("DATABASE_URL"),
		Port:        util.GetEnvString("PORT", "8080"),
		Debug:       util.GetEnvBool("DEBUG", false),
	}
}
