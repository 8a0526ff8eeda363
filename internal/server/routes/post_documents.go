package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/abhishekg1-gl/langgraph/internal/queue"
	"github.com/abhishekg1-gl/langgraph/internal/server/middleware"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
)

// AddDocumentHandler registers an uploaded document for indexing. The
// document bytes must already be in object storage under the given key;
// indexing itself runs on the worker.
func AddDocumentHandler(c echo.Context) error {
	type addDocumentBody struct {
		SourceTitle string `json:"source_title" validate:"required"`
		Key         string `json:"key" validate:"required"`
	}

	type addDocumentResponse struct {
		Message string `json:"message"`
		DocID   string `json:"doc_id,omitempty"`
	}

	data := new(addDocumentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, addDocumentResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, addDocumentResponse{
			Message: "Invalid request body",
		})
	}

	docID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate document id", "err", err)
		return c.JSON(http.StatusInternalServerError, addDocumentResponse{
			Message: "Internal server error",
		})
	}

	msg, err := json.Marshal(queue.IngestMessage{
		DocID:       docID,
		SourceTitle: data.SourceTitle,
		Key:         data.Key,
	})
	if err != nil {
		logger.Error("Failed to marshal ingest message", "err", err)
		return c.JSON(http.StatusInternalServerError, addDocumentResponse{
			Message: "Internal server error",
		})
	}

	app := c.(*middleware.AppContext).App
	if err := queue.Publish(app.Queue, queue.IngestQueue, msg); err != nil {
		logger.Error("Failed to publish ingest message", "err", err)
		return c.JSON(http.StatusInternalServerError, addDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, addDocumentResponse{
		Message: "Document queued for indexing",
		DocID:   docID,
	})
}
