// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/sightline/internal/config"
	"github.com/agenthands/sightline/internal/driver"
	"github.com/agenthands/sightline/internal/llm"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/pipeline"
)

type Server struct {
	Engine *pipeline.Engine
	Graph  driver.GraphDriver
	cfg    *config.Config
}

// NewServer wires config, ports, engine, and the optional graph export
// sink. Export stays disabled unless a Memgraph URI is configured.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}

	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envEmbeddingModel := os.Getenv("LLM_EMBEDDING_MODEL"); envEmbeddingModel != "" {
		cfg.LLM.EmbeddingModel = envEmbeddingModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}
	if envURI := os.Getenv("MEMGRAPH_URI"); envURI != "" {
		cfg.Export.MemgraphURI = envURI
	}
	if envUser := os.Getenv("MEMGRAPH_USER"); envUser != "" {
		cfg.Export.MemgraphUser = envUser
	}
	if envPass := os.Getenv("MEMGRAPH_PASSWORD"); envPass != "" {
		cfg.Export.MemgraphPassword = envPass
	}

	portSet, err := llm.NewPortSet(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize model ports: %v", err)
	}

	var graph driver.GraphDriver
	if cfg.Export.MemgraphURI != "" {
		d, err := driver.NewMemgraphDriver(cfg.Export.MemgraphURI, cfg.Export.MemgraphUser, cfg.Export.MemgraphPassword)
		if err != nil {
			log.Fatalf("Failed to connect to Memgraph: %v", err)
		}
		if err := d.BuildIndices(context.Background()); err != nil {
			log.Printf("Warning: failed to build graph indices: %v", err)
		}
		graph = d
	}

	return &Server{
		Engine: pipeline.New(cfg, portSet),
		Graph:  graph,
		cfg:    cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/query", s.Query)
	r.GET("/healthz", s.Healthz)

	return r
}

func (s *Server) Query(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.QueryID == "" {
		req.QueryID = "query_" + uuid.NewString()
	}

	result, err := s.Engine.Run(c.Request.Context(), &req)
	if err != nil {
		log.Printf("Failed to run query %s: %v", req.QueryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}

	if s.Graph != nil {
		if err := s.Graph.SaveNodes(c.Request.Context(), result.GraphNodes); err != nil {
			log.Printf("Failed to export graph nodes: %v", err)
		} else if err := s.Graph.SaveEdges(c.Request.Context(), result.GraphEdges); err != nil {
			log.Printf("Failed to export graph edges: %v", err)
		}
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pipeline": s.cfg.Meta.Name, "version": s.cfg.Meta.Version})
}
