package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhishekg1-gl/langgraph/internal/server/middleware"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
	"github.com/abhishekg1-gl/langgraph/pkg/logger"
	"github.com/abhishekg1-gl/langgraph/pkg/prompt"
	"github.com/abhishekg1-gl/langgraph/pkg/query"
	"github.com/abhishekg1-gl/langgraph/pkg/retriever"
	pgxstore "github.com/abhishekg1-gl/langgraph/pkg/store/pgx"
)

type citationResponse struct {
	SourceTitle string `json:"source_title"`
	PageNumber  int    `json:"page_number"`
	DocID       string `json:"doc_id"`
	ChunkID     string `json:"chunk_id"`
}

type graphPathResponse struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Depth int    `json:"depth"`
}

type queryStatsResponse struct {
	VectorChunks   int `json:"vectorChunks"`
	GraphChunks    int `json:"graphChunks"`
	TotalChunks    int `json:"totalChunks"`
	GraphPathCount int `json:"graphPathCount"`
}

type queryResponse struct {
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
	Query      string              `json:"query,omitempty"`
	Answer     string              `json:"answer,omitempty"`
	Citations  []citationResponse  `json:"citations"`
	GraphPaths []graphPathResponse `json:"graphPaths"`
	Stats      queryStatsResponse  `json:"stats"`
}

// QueryHandler answers one question against the indexed corpus.
func QueryHandler(c echo.Context) error {
	// graphDepth is a pointer because zero is meaningful: it requests
	// vector-only retrieval rather than the configured default depth.
	type queryBody struct {
		Query      string `json:"query" validate:"required"`
		TopK       int    `json:"topK" validate:"omitempty,min=1,max=100"`
		GraphDepth *int   `json:"graphDepth" validate:"omitempty,min=0,max=5"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Error: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Error: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	cfg := app.Config

	topK := data.TopK
	if topK == 0 {
		topK = cfg.DefaultTopK
	}
	graphDepth := cfg.DefaultGraphDepth
	if data.GraphDepth != nil {
		graphDepth = *data.GraphDepth
	}

	store := pgxstore.NewStore(app.DBConn)
	orchestrator := query.NewOrchestrator(query.NewOrchestratorParams{
		Retriever: retriever.NewRetriever(retriever.NewRetrieverParams{
			Chunks:      store,
			Graph:       store,
			AIClient:    app.AIClient,
			NeighborCap: cfg.TraversalNeighborCap,
		}),
		Assembler: prompt.NewAssembler(prompt.NewAssemblerParams{
			EvidenceCap: cfg.PromptEvidenceCap,
			PathCap:     cfg.PromptPathCap,
		}),
		AIClient:          app.AIClient,
		GenerationTimeout: cfg.GenerationTimeout,
	})

	result, err := orchestrator.Query(c.Request().Context(), data.Query, retriever.Params{
		TopK:       topK,
		GraphDepth: graphDepth,
	})
	if err != nil {
		logger.Error("Query failed", "err", err)
		return c.JSON(http.StatusBadGateway, queryResponse{
			Error: "Query backend unavailable",
		})
	}

	return c.JSON(http.StatusOK, toQueryResponse(result))
}

func toQueryResponse(result common.QueryResult) queryResponse {
	citations := make([]citationResponse, 0, len(result.Citations))
	for _, cit := range result.Citations {
		citations = append(citations, citationResponse{
			SourceTitle: cit.SourceTitle,
			PageNumber:  cit.Page,
			DocID:       cit.DocID,
			ChunkID:     cit.ChunkID,
		})
	}

	paths := make([]graphPathResponse, 0, len(result.GraphPaths))
	for _, p := range result.GraphPaths {
		paths = append(paths, graphPathResponse{From: p.From, To: p.To, Depth: p.Depth})
	}

	return queryResponse{
		Success:    true,
		Query:      result.Query,
		Answer:     result.Answer,
		Citations:  citations,
		GraphPaths: paths,
		Stats: queryStatsResponse{
			VectorChunks:   result.Stats.VectorChunks,
			GraphChunks:    result.Stats.GraphChunks,
			TotalChunks:    result.Stats.TotalChunks,
			GraphPathCount: result.Stats.GraphPathCount,
		},
	}
}
