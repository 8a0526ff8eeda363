// Package query orchestrates a single question end to end: hybrid retrieval,
// prompt assembly and the generation call, folding every internal failure
// mode into a well-defined answer state.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	"github.com/abhishekg1-gl/langgraph/pkg/prompt"
	"github.com/abhishekg1-gl/langgraph/pkg/retriever"
)

const (
	// NoEvidenceAnswer is returned when retrieval finds nothing. An empty
	// corpus match is a legitimate outcome, not a failure.
	NoEvidenceAnswer = "No relevant information was found for this query."

	// TimeoutAnswer replaces the generated answer when the generation call
	// exceeds its deadline. Citations and graph paths from retrieval are
	// kept, since retrieval succeeded independently.
	TimeoutAnswer = "The answer could not be generated in time. Try reducing the graph depth or the number of retrieved chunks."

	defaultGenerationTimeout = 60 * time.Second
)

// Orchestrator runs queries against the retriever and generation backend.
type Orchestrator struct {
	retriever         *retriever.Retriever
	assembler         *prompt.Assembler
	aiClient          ai.Client
	generationTimeout time.Duration
}

// NewOrchestratorParams configures a new Orchestrator.
type NewOrchestratorParams struct {
	Retriever         *retriever.Retriever
	Assembler         *prompt.Assembler
	AIClient          ai.Client
	GenerationTimeout time.Duration
}

func NewOrchestrator(params NewOrchestratorParams) *Orchestrator {
	timeout := params.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Orchestrator{
		retriever:         params.Retriever,
		assembler:         params.Assembler,
		aiClient:          params.AIClient,
		generationTimeout: timeout,
	}
}

// Query answers one question. It returns an error only when retrieval itself
// cannot start or complete against its backends; empty evidence and
// generation timeouts are folded into the answer instead.
func (o *Orchestrator) Query(ctx context.Context, question string, params retriever.Params) (common.QueryResult, error) {
	result := common.QueryResult{
		Query:      question,
		Citations:  []common.Citation{},
		GraphPaths: []common.GraphPath{},
	}

	retrieved, err := o.retriever.Retrieve(ctx, question, params)
	if err != nil {
		return result, fmt.Errorf("retrieval failed: %w", err)
	}
	result.GraphPaths = retrieved.Paths
	result.Stats = retrieved.Stats

	if len(retrieved.Evidence) == 0 {
		result.Answer = NoEvidenceAnswer
		return result, nil
	}

	result.Citations = citationsFor(retrieved.Evidence)

	promptText := o.assembler.Build(question, retrieved.Evidence, retrieved.Paths)

	answer, err := o.generate(ctx, promptText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("[Query] Generation timed out, returning fallback answer", "timeout", o.generationTimeout)
			result.Answer = TimeoutAnswer
			return result, nil
		}
		return result, fmt.Errorf("generation failed: %w", err)
	}

	result.Answer = answer
	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, promptText string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.generationTimeout)
	defer cancel()
	return o.aiClient.GenerateCompletion(genCtx, promptText, ai.WithTemperature(0.2))
}

// citationsFor derives citations from the final evidence set, one per
// (document, page) pair in evidence order.
func citationsFor(evidence []common.EvidenceChunk) []common.Citation {
	citations := make([]common.Citation, 0, len(evidence))
	seen := make(map[string]bool)
	for _, chunk := range evidence {
		key := fmt.Sprintf("%s:%d", chunk.Passage.DocID, chunk.Passage.Page)
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, common.Citation{
			SourceTitle: chunk.Passage.SourceTitle,
			Page:        chunk.Passage.Page,
			DocID:       chunk.Passage.DocID,
			ChunkID:     chunk.Passage.ID,
		})
	}
	return citations
}
