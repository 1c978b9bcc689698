package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-evaluator/models"
	"car-evaluator/scraper/polovni"
	"car-evaluator/services"
	"car-evaluator/utils"
)

// ListingSource fetches raw listings for a search. polovni.Scraper satisfies it.
type ListingSource interface {
	Scrape(ctx context.Context, q polovni.Query) ([]*models.RawListing, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	source   ListingSource
	cleaner  *services.Cleaner
	analyzer *services.Analyzer
	logger   *utils.Logger
	version  string
}

// NewHandler creates a new HTTP handler. source may be nil when no browser is
// available; /api/scrape then answers 502.
func NewHandler(source ListingSource, cleaner *services.Cleaner, analyzer *services.Analyzer, logger *utils.Logger, version string) *Handler {
	return &Handler{
		source:   source,
		cleaner:  cleaner,
		analyzer: analyzer,
		logger:   logger,
		version:  version,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "car-evaluator",
		"version": h.version,
	})
}

// Scrape fetches and cleans the listings for a make and model.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, bindMessage(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if h.source == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "scraper is not available"})
		return
	}

	q := polovni.Query{Make: req.Make, Model: req.Model, PriceTo: req.PriceTo, Pages: req.PageCount()}
	raw, err := h.source.Scrape(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("[server] %s scrape %s %s failed: %v", c.GetString(requestIDKey), req.Make, req.Model, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.cleaner.Clean(raw))
}

// Analyze ranks the posted listings against the posted reference car.
// Analysis failures are part of the 200 response body.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, bindMessage(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, h.analyzer.Analyze(req.InputCar, req.Listings))
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	h.logger.Warn("[server] %s %s %s: %s", c.GetString(requestIDKey), c.Request.Method, c.FullPath(), msg)
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func bindMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return "missing JSON body"
	}
	return "invalid JSON body: " + err.Error()
}
