package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justyntemme/bookdash/internal/dashboard"
	"github.com/justyntemme/bookdash/internal/metadata"
	"github.com/justyntemme/bookdash/internal/models"
)

// PassHistory is the read side of the aggregation pass log
type PassHistory interface {
	ListPasses(ctx context.Context, limit int) ([]models.PassRecord, error)
	CountPassesByStatus(ctx context.Context) (map[string]int, error)
}

// Handler contains the dashboard HTTP handlers
type Handler struct {
	dashboard *dashboard.Dashboard
	history   PassHistory
	query     string
}

// NewHandler creates a new handler instance
func NewHandler(d *dashboard.Dashboard, history PassHistory, query string) *Handler {
	return &Handler{
		dashboard: d,
		history:   history,
		query:     query,
	}
}

// dashboardResponse is the payload the table view renders from
type dashboardResponse struct {
	dashboard.Snapshot
	Query     string           `json:"query"`
	PageSizes []int            `json:"page_sizes"`
	SortKeys  []models.SortKey `json:"sort_keys"`
}

func (h *Handler) snapshot() dashboardResponse {
	return dashboardResponse{
		Snapshot:  h.dashboard.Snapshot(),
		Query:     h.query,
		PageSizes: models.PageSizes,
		SortKeys:  dashboard.SortKeys(),
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDashboard returns the current rows, pagination and pipeline state
func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot())
}

// ChangePage fetches the requested page
func (h *Handler) ChangePage(c *gin.Context) {
	var req struct {
		Page int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page is required"})
		return
	}

	err := h.dashboard.ChangePage(context.WithoutCancel(c.Request.Context()), req.Page)
	h.respondToPass(c, err)
}

// ChangePageSize switches the number of rows per page
func (h *Handler) ChangePageSize(c *gin.Context) {
	var req struct {
		PageSize int `json:"page_size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size is required"})
		return
	}

	err := h.dashboard.ChangePageSize(context.WithoutCancel(c.Request.Context()), req.PageSize)
	h.respondToPass(c, err)
}

// RequestSort sorts the current rows by a column, toggling direction on repeat
func (h *Handler) RequestSort(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	key, err := dashboard.ParseSortKey(req.Key)
	if err == nil {
		err = h.dashboard.RequestSort(key)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "sort_keys": dashboard.SortKeys()})
		return
	}

	c.JSON(http.StatusOK, h.snapshot())
}

// ListPasses returns recent aggregation passes
func (h *Handler) ListPasses(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	passes, err := h.history.ListPasses(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Failed to list passes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pass history"})
		return
	}

	counts, err := h.history.CountPassesByStatus(c.Request.Context())
	if err != nil {
		slog.Error("Failed to count passes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pass history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"passes": passes,
		"count":  len(passes),
		"totals": counts,
	})
}

// APIInfo returns API documentation for programmatic clients
func (h *Handler) APIInfo(c *gin.Context) {
	endpoints := []gin.H{
		{"method": "GET", "path": "/health", "description": "Health check"},
		{"method": "GET", "path": "/metrics", "description": "Prometheus metrics"},
		{"method": "GET", "path": "/api", "description": "API documentation"},
		{"method": "POST", "path": "/api/auth/login", "description": "Login", "body": "username, password"},
		{"method": "GET", "path": "/api/dashboard", "description": "Current rows, pagination and state", "auth": true},
		{"method": "PUT", "path": "/api/dashboard/page", "description": "Change page", "body": "page", "auth": true},
		{"method": "PUT", "path": "/api/dashboard/page-size", "description": "Change page size", "body": "page_size", "auth": true},
		{"method": "POST", "path": "/api/dashboard/sort", "description": "Sort by column (repeat to toggle)", "body": "key", "auth": true},
		{"method": "GET", "path": "/api/dashboard/passes", "description": "Aggregation pass history", "query": "limit", "auth": true},
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        "Bookdash API",
		"version":     "1.0.0",
		"description": "Paginated, sortable book table enriched with author details",
		"endpoints":   endpoints,
	})
}

// respondToPass maps the outcome of a pagination change to a response
func (h *Handler) respondToPass(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.snapshot())
	case errors.Is(err, dashboard.ErrInvalidPage), errors.Is(err, dashboard.ErrInvalidPageSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "page_sizes": models.PageSizes})
	case errors.Is(err, dashboard.ErrSuperseded):
		c.JSON(http.StatusAccepted, h.snapshot())
	case metadata.IsFetchError(err):
		c.JSON(http.StatusBadGateway, h.snapshot())
	default:
		slog.Error("Aggregation pass failed unexpectedly", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load page"})
	}
}
