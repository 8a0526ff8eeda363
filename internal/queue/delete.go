package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhishekg1-gl/langgraph/internal/storage"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	pgxstore "github.com/abhishekg1-gl/langgraph/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeleteMessage asks the worker to remove one document and its derived data.
type DeleteMessage struct {
	DocID string `json:"doc_id"`
	Key   string `json:"key"`
}

// ProcessDelete removes a document's passages, prunes its graph provenance
// and deletes the stored object. Graph entities that lose their last
// provenance reference are removed with it.
func ProcessDelete(
	ctx context.Context,
	s3Client *awss3.Client,
	pgConn *pgxpool.Pool,
	body string,
) error {
	var msg DeleteMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to parse delete message: %w", err)
	}
	if msg.DocID == "" {
		return fmt.Errorf("delete message missing doc_id")
	}

	store := pgxstore.NewStore(pgConn)
	if err := store.DeleteDocument(ctx, msg.DocID); err != nil {
		return err
	}

	if msg.Key != "" {
		if err := storage.DeleteDocument(ctx, s3Client, msg.Key); err != nil {
			logger.Error("[Delete] Failed to delete stored object, data already removed", "key", msg.Key, "err", err)
		}
	}

	logger.Info("[Delete] Document removed", "doc", msg.DocID)
	return nil
}
