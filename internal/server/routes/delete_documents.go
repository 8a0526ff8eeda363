package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhishekg1-gl/langgraph/internal/queue"
	"github.com/abhishekg1-gl/langgraph/internal/server/middleware"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
)

// DeleteDocumentHandler queues removal of one document and everything
// derived from it.
func DeleteDocumentHandler(c echo.Context) error {
	type deleteDocumentResponse struct {
		Message string `json:"message"`
	}

	docID := c.Param("id")
	if docID == "" {
		return c.JSON(http.StatusBadRequest, deleteDocumentResponse{
			Message: "Missing document id",
		})
	}

	msg, err := json.Marshal(queue.DeleteMessage{
		DocID: docID,
		Key:   c.QueryParam("key"),
	})
	if err != nil {
		logger.Error("Failed to marshal delete message", "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDocumentResponse{
			Message: "Internal server error",
		})
	}

	app := c.(*middleware.AppContext).App
	if err := queue.Publish(app.Queue, queue.DeleteQueue, msg); err != nil {
		logger.Error("Failed to publish delete message", "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, deleteDocumentResponse{
		Message: "Document queued for deletion",
	})
}
