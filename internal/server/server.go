package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/REPPL/Persona-sub003/internal/config"
	"github.com/REPPL/Persona-sub003/internal/core"
	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/llm"
	"github.com/REPPL/Persona-sub003/internal/logging"
	"github.com/REPPL/Persona-sub003/internal/store"
)

// Verifier is the slice of the pipeline the handlers need. Satisfied by
// *core.Verifier and stubbed in handler tests.
type Verifier interface {
	Verify(ctx context.Context, subject string, source map[string]interface{}, candidateCount int) model.VerificationReport
	VerifySelfConsistency(ctx context.Context, subject string, source map[string]interface{}, backend string, samples int) model.VerificationReport
	VerifyBatch(ctx context.Context, subjects []core.Subject, candidateCount int) []model.VerificationReport
}

type Server struct {
	verifier Verifier
	reports  *store.ReportStore // nil disables persistence
	logger   logging.Logger
}

func NewServer(verifier Verifier, reports *store.ReportStore) *Server {
	return &Server{
		verifier: verifier,
		reports:  reports,
		logger:   logging.New("server"),
	}
}

// Bootstrap wires a Server from configuration: persona generator, optional
// embedder, verifier, and the report store when a graph URI is configured.
func Bootstrap(cfg *config.Config) (*Server, error) {
	gen := llm.NewPersonaGenerator(cfg.LLM, cfg.Prompts.Persona, cfg.Verification.BackendWeights)
	vcfg := cfg.VerificationModel()

	embedder, err := llm.NewEmbedder(context.Background(), vcfg.EmbeddingModel, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	verifier, err := core.NewVerifier(gen, embedder, vcfg)
	if err != nil {
		return nil, err
	}

	var reports *store.ReportStore
	if cfg.Memgraph.URI != "" {
		conn, err := store.NewMemgraphConnection(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to report store: %w", err)
		}
		reports = store.NewReportStore(conn)
		_ = reports.EnsureIndices(context.Background())
	}

	s := NewServer(verifier, reports)
	if reports == nil {
		s.logger.Warn("no graph store configured; reports will not be persisted")
	}
	return s, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/verify", s.Verify)
	r.POST("/verify/self-consistency", s.VerifySelfConsistency)
	r.POST("/verify/batch", s.VerifyBatch)
	r.GET("/reports/:id", s.GetReport)
	r.GET("/reports/:id/text", s.GetReportText)
	r.GET("/subjects/:subject/reports", s.ListReports)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type VerifyRequest struct {
	Subject        string                 `json:"subject" binding:"required"`
	SourceData     map[string]interface{} `json:"source_data" binding:"required"`
	CandidateCount int                    `json:"candidate_count"`
}

// Verify runs the pipeline for one subject. The response is always the
// report, HTTP 200 even when the verdict is failed: run-time trouble
// surfaces through report fields, not status codes.
func (s *Server) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	report := s.verifier.Verify(c.Request.Context(), req.Subject, req.SourceData, req.CandidateCount)
	s.persist(c.Request.Context(), report)
	c.JSON(http.StatusOK, report)
}

type SelfConsistencyRequest struct {
	Subject    string                 `json:"subject" binding:"required"`
	SourceData map[string]interface{} `json:"source_data" binding:"required"`
	Backend    string                 `json:"backend" binding:"required"`
	Samples    int                    `json:"samples"`
}

func (s *Server) VerifySelfConsistency(c *gin.Context) {
	var req SelfConsistencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	report := s.verifier.VerifySelfConsistency(c.Request.Context(), req.Subject, req.SourceData, req.Backend, req.Samples)
	s.persist(c.Request.Context(), report)
	c.JSON(http.StatusOK, report)
}

type BatchRequest struct {
	Subjects       []core.Subject `json:"subjects" binding:"required,min=1"`
	CandidateCount int            `json:"candidate_count"`
}

func (s *Server) VerifyBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	reports := s.verifier.VerifyBatch(c.Request.Context(), req.Subjects, req.CandidateCount)
	for _, report := range reports {
		s.persist(c.Request.Context(), report)
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) GetReport(c *gin.Context) {
	report, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetReportText(c *gin.Context) {
	report, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, report.Text())
}

func (s *Server) ListReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	reports, err := s.reports.ListReports(c.Request.Context(), c.Param("subject"), limit)
	if err != nil {
		s.logger.Errorf("failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) loadReport(c *gin.Context) (model.VerificationReport, bool) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return model.VerificationReport{}, false
	}
	report, err := s.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		} else {
			s.logger.Errorf("failed to load report: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
		}
		return model.VerificationReport{}, false
	}
	return report, true
}

// persist saves the report when a store is configured. Persistence trouble
// never fails the request; the report was already computed.
func (s *Server) persist(ctx context.Context, report model.VerificationReport) {
	if s.reports == nil {
		return
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		s.logger.Errorf("failed to persist report %s: %v", report.ID, err)
	}
}
