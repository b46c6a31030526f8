package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gokaycavdar/go-ipreputation/pkg/engine"
	"github.com/gokaycavdar/go-ipreputation/pkg/geoip"
)

// ReputationRequest is the body of POST /api/v1/reputation.
type ReputationRequest struct {
	IPAddress string `json:"ip_address" binding:"required"`
}

// BlacklistRequest is the body of POST /api/v1/blacklist.
type BlacklistRequest struct {
	Reason    string `json:"reason" binding:"required"`
	IPAddress string `json:"ip_address" binding:"required"`
}

// Server exposes a Scorer over HTTP.
type Server struct {
	router   *gin.Engine
	scorer   *engine.Scorer
	provider geoip.Provider
}

// NewServer builds the gin router and registers the routes.
func NewServer(scorer *engine.Scorer, provider geoip.Provider, trustedProxies []string) (*Server, error) {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	s := &Server{router: r, scorer: scorer, provider: provider}

	v1 := r.Group("/api/v1")
	v1.POST("/reputation", s.handleReputation)
	v1.GET("/reputation/self", s.handleSelfReputation)
	v1.POST("/blacklist", s.handleBlacklist)
	v1.GET("/rules", s.handleRules)
	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the server fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleReputation(c *gin.Context) {
	var req ReputationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip_address is required"})
		return
	}
	s.respondWithScore(c, req.IPAddress)
}

// handleSelfReputation scores the caller's own address.
func (s *Server) handleSelfReputation(c *gin.Context) {
	s.respondWithScore(c, c.ClientIP())
}

func (s *Server) respondWithScore(c *gin.Context, ip string) {
	result, err := s.scorer.Evaluate(c.Request.Context(), ip, s.provider)
	if err != nil {
		if errors.Is(err, geoip.ErrLookup) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		logrus.WithError(err).WithField("ip", ip).Error("Scoring failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleBlacklist(c *gin.Context) {
	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason and ip_address are required"})
		return
	}
	if err := s.scorer.AddToBlacklist(c.Request.Context(), req.Reason, req.IPAddress); err != nil {
		logrus.WithError(err).Error("Blacklist update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "blacklist update failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reason": req.Reason, "ip_address": req.IPAddress})
}

func (s *Server) handleRules(c *gin.Context) {
	c.JSON(http.StatusOK, s.scorer.Table())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"client": c.ClientIP(),
		}).Debug("Request served")
	}
}
