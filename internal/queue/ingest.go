package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhishekg1-gl/langgraph/internal/config"
	"github.com/abhishekg1-gl/langgraph/internal/storage"
	"github.com/abhishekg1-gl/langgraph/internal/util"
	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/chunker"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/extract"
	"github.com/abhishekg1-gl/langgraph/pkg/linker"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	pgxstore "github.com/abhishekg1-gl/langgraph/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxIngestTries bounds retries for the transient calls in the pipeline,
// the object-storage fetch and the embedding request.
const maxIngestTries = 3

// IngestMessage asks the worker to index one document already uploaded to
// object storage.
type IngestMessage struct {
	DocID       string `json:"doc_id"`
	SourceTitle string `json:"source_title"`
	Key         string `json:"key"`
}

// ProcessIngest runs the offline pipeline for one document: fetch, chunk,
// embed, persist, extract, link. Degraded extractions are logged and the
// remaining passages still get indexed.
func ProcessIngest(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.Client,
	pgConn *pgxpool.Pool,
	cfg config.Config,
	body string,
) error {
	var msg IngestMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to parse ingest message: %w", err)
	}
	if msg.DocID == "" || msg.Key == "" {
		return fmt.Errorf("ingest message missing doc_id or key")
	}

	raw, err := util.RetryWithContext(ctx, maxIngestTries, func(ctx context.Context) ([]byte, error) {
		return storage.GetDocument(ctx, s3Client, msg.Key)
	})
	if err != nil {
		return err
	}

	ck, err := chunker.New("cl100k_base", cfg.ChunkTokens)
	if err != nil {
		return err
	}
	passages, err := ck.Split(msg.DocID, msg.SourceTitle, documentSections(string(raw)))
	if err != nil {
		return fmt.Errorf("failed to chunk document %s: %w", msg.DocID, err)
	}
	if len(passages) == 0 {
		logger.Warn("[Ingest] Document produced no passages", "doc", msg.DocID)
		return nil
	}

	inputs := make([][]byte, len(passages))
	for i := range passages {
		inputs[i] = []byte(passages[i].Text)
	}
	embeddings, err := util.RetryWithContext(ctx, maxIngestTries, func(ctx context.Context) ([][]float32, error) {
		return aiClient.GenerateEmbeddings(ctx, inputs)
	})
	if err != nil {
		return fmt.Errorf("failed to embed passages for document %s: %w", msg.DocID, err)
	}
	if len(embeddings) != len(passages) {
		return fmt.Errorf("embedding count mismatch for document %s: got %d, want %d", msg.DocID, len(embeddings), len(passages))
	}
	for i := range passages {
		passages[i].Embedding = embeddings[i]
	}

	store := pgxstore.NewStore(pgConn)
	if err := store.SavePassages(ctx, passages); err != nil {
		return err
	}
	logger.Info("[Ingest] Passages saved", "doc", msg.DocID, "passages", len(passages))

	extractor := extract.NewExtractor(extract.NewExtractorParams{
		Client:        aiClient,
		Timeout:       cfg.ExtractTimeout,
		TruncateChars: cfg.ExtractTruncateLen,
	})

	lk := linker.NewLinker(store)
	batches := batchPassages(passages, cfg.ExtractBatchSize)
	var entities, relationships, extractErrors int
	for i, batch := range batches {
		results, summary, err := extractor.ExtractBatch(ctx, batch)
		if err != nil {
			return err
		}
		extractErrors += summary.Errors
		logger.Info(
			"[Ingest] Extraction batch finished",
			"doc", msg.DocID,
			"batch", i+1,
			"batches", len(batches),
			"entities", summary.Entities,
			"relationships", summary.Relationships,
			"errors", summary.Errors,
		)

		counts, err := lk.LinkBatch(ctx, results)
		if err != nil {
			return err
		}
		entities += counts.Entities
		relationships += counts.Relationships
	}
	logger.Info(
		"[Ingest] Graph updated",
		"doc", msg.DocID,
		"entities", entities,
		"relationships", relationships,
		"extractErrors", extractErrors,
	)

	return nil
}

// batchPassages slices passages into groups of at most size. A size <= 0
// yields one group with everything.
func batchPassages(passages []common.Passage, size int) [][]common.Passage {
	if len(passages) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]common.Passage{passages}
	}
	batches := make([][]common.Passage, 0, (len(passages)+size-1)/size)
	for start := 0; start < len(passages); start += size {
		end := start + size
		if end > len(passages) {
			end = len(passages)
		}
		batches = append(batches, passages[start:end])
	}
	return batches
}

// documentSections splits raw text into page sections. Pages are separated
// by form feeds; documents without form feeds become a single unpaged
// section.
func documentSections(text string) []chunker.Section {
	pages := strings.Split(text, "\f")
	if len(pages) == 1 {
		return []chunker.Section{{Page: 0, Text: text}}
	}

	sections := make([]chunker.Section, 0, len(pages))
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		sections = append(sections, chunker.Section{Page: i + 1, Text: page})
	}
	return sections
}
