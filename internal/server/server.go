package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/feedback"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/match"
	"github.com/spigell/interview-coach/internal/rag"
)

// Server exposes the interview coach over HTTP. Any of the services may be
// nil when its provider is unconfigured; the affected endpoints then answer
// 503 while the rest of the API keeps working.
type Server struct {
	rag        *rag.Builder
	interviews *interview.Service
	analyzer   *feedback.Analyzer
	matcher    *match.Matcher
	logger     *zap.Logger
}

func New(builder *rag.Builder, interviews *interview.Service, analyzer *feedback.Analyzer, matcher *match.Matcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		rag:        builder,
		interviews: interviews,
		analyzer:   analyzer,
		matcher:    matcher,
		logger:     logger,
	}
}

// Router builds the Gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(cors())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/match", s.handleMatch)

	iv := api.Group("/interview")
	iv.POST("/build-context", s.handleBuildContext)
	iv.POST("/start", s.handleStart)
	iv.POST("/message", s.handleMessage)
	iv.GET("/session/:session_id", s.handleGetSession)
	iv.POST("/analyze-response", s.handleAnalyzeResponse)
	iv.GET("/feedback/:session_id", s.handleGetFeedback)
	iv.GET("/status", s.handleStatus)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type buildContextRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	ResumeText string `json:"resume_text" binding:"required"`
	JobText    string `json:"job_text" binding:"required"`
}

func (s *Server) handleBuildContext(c *gin.Context) {
	if s.rag == nil {
		serviceUnavailable(c)
		return
	}

	var req buildContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.rag.BuildUserContext(c.Request.Context(), req.UserID, req.ResumeText, req.JobText)
	if err != nil {
		s.logger.Error("build context failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Context built successfully",
		"details": result,
	})
}

type startRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *Server) handleStart(c *gin.Context) {
	if s.interviews == nil {
		serviceUnavailable(c)
		return
	}

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, greeting := s.interviews.StartSession(req.UserID)

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"message":    greeting,
		"section":    session.Section,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (s *Server) handleMessage(c *gin.Context) {
	if s.interviews == nil {
		serviceUnavailable(c)
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.interviews.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, interview.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		s.logger.Error("process message failed", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleGetSession(c *gin.Context) {
	if s.interviews == nil {
		serviceUnavailable(c)
		return
	}

	session, ok := s.interviews.GetSession(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":      session.ID,
		"user_id":         session.UserID,
		"current_section": session.Section,
		"question_index":  session.QuestionIndex,
		"message_count":   len(session.Messages),
		"created_at":      session.CreatedAt.Format(time.RFC3339),
	})
}

type analyzeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
	Response  string `json:"response" binding:"required"`
}

func (s *Server) handleAnalyzeResponse(c *gin.Context) {
	if s.analyzer == nil {
		serviceUnavailable(c)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ground the rubric in the stored job context when available.
	jobContext := ""
	if s.rag != nil {
		var err error
		jobContext, err = s.rag.JobContext(c.Request.Context(), req.UserID)
		if err != nil {
			s.logger.Warn("job context retrieval failed", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	result := s.analyzer.AnalyzeResponse(c.Request.Context(), req.SessionID, req.UserID, req.Question, req.Response, jobContext)

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetFeedback(c *gin.Context) {
	if s.analyzer == nil {
		serviceUnavailable(c)
		return
	}

	summary, ok := s.analyzer.SessionSummary(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No feedback found for this session"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type matchRequest struct {
	ResumeText string `json:"resume_text" binding:"required"`
	JobText    string `json:"job_text" binding:"required"`
}

func (s *Server) handleMatch(c *gin.Context) {
	if s.matcher == nil {
		serviceUnavailable(c)
		return
	}

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment, err := s.matcher.Evaluate(c.Request.Context(), req.ResumeText, req.JobText)
	if err != nil {
		s.logger.Error("match evaluation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate match"})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"available": s.rag != nil && s.interviews != nil && s.analyzer != nil,
		"services": gin.H{
			"rag":       s.rag != nil,
			"interview": s.interviews != nil,
			"feedback":  s.analyzer != nil,
			"match":     s.matcher != nil,
		},
	})
}

func serviceUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Interview services not available"})
}
