package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/service"
)

// HTTPHandler exposes the watchlists over a JSON API
type HTTPHandler struct {
	watchlists *service.WatchlistService
	activity   *service.ActivityLogger
	backupSvc  service.Backuper
	apiToken   string
}

// NewHTTPHandler creates a new HTTPHandler
func NewHTTPHandler(
	watchlists *service.WatchlistService,
	activity *service.ActivityLogger,
	backupSvc service.Backuper,
	apiToken string,
) *HTTPHandler {
	return &HTTPHandler{
		watchlists: watchlists,
		activity:   activity,
		backupSvc:  backupSvc,
		apiToken:   strings.TrimSpace(apiToken),
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	// Health check must allow unauthenticated ping for probes
	r.GET("/api/health", h.Health)

	api := r.Group("/api")
	api.Use(h.authMiddleware)

	users := api.Group("/users/:user")
	users.GET("/entries", h.ListEntries)
	users.POST("/entries", h.AddEntry)
	users.GET("/entries/:index", h.GetEntry)
	users.DELETE("/entries/:index", h.DeleteEntry)
	users.PUT("/entries/:index/status", h.UpdateStatus)
	users.PUT("/entries/:index/progress", h.UpdateProgress)
	users.POST("/entries/:index/favorite", h.ToggleFavorite)
	users.GET("/favorites", h.GetFavorites)
	users.GET("/search", h.Search)
	users.GET("/random", h.Random)

	api.GET("/activity", h.GetActivity)

	api.POST("/backup", func(c *gin.Context) {
		backupPath, err := h.backupSvc.Backup()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"backup_path": backupPath})
	})
}

// ListEntries returns the user's watchlist
func (h *HTTPHandler) ListEntries(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	entries, err := h.watchlists.List(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddEntry appends a new entry to the user's watchlist
func (h *HTTPHandler) AddEntry(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var input models.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.watchlists.AddEntry(actor, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// GetEntry returns every attribute of one entry
func (h *HTTPHandler) GetEntry(c *gin.Context) {
	actor, index, ok := h.actorAndIndex(c)
	if !ok {
		return
	}

	entry, err := h.watchlists.Details(actor, index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "entry": entry})
}

// DeleteEntry removes one entry
func (h *HTTPHandler) DeleteEntry(c *gin.Context) {
	actor, index, ok := h.actorAndIndex(c)
	if !ok {
		return
	}

	entry, err := h.watchlists.Delete(actor, index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": entry})
}

// UpdateStatus changes the status of one entry
func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	actor, index, ok := h.actorAndIndex(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.watchlists.UpdateStatus(actor, index, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateProgress sets the watched episodes of one entry
func (h *HTTPHandler) UpdateProgress(c *gin.Context) {
	actor, index, ok := h.actorAndIndex(c)
	if !ok {
		return
	}

	var req struct {
		Episodes *int `json:"episodes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.watchlists.UpdateProgress(actor, index, *req.Episodes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// ToggleFavorite flips the favorite flag of one entry
func (h *HTTPHandler) ToggleFavorite(c *gin.Context) {
	actor, index, ok := h.actorAndIndex(c)
	if !ok {
		return
	}

	entry, err := h.watchlists.ToggleFavorite(actor, index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// GetFavorites returns the user's favorite entries
func (h *HTTPHandler) GetFavorites(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	entries, err := h.watchlists.Favorites(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Search returns entries whose title contains ?q=
func (h *HTTPHandler) Search(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	results, err := h.watchlists.Search(actor, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Random suggests an entry that is not completed yet
func (h *HTTPHandler) Random(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	entry, found, err := h.watchlists.PickRandom(actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no unwatched anime in watchlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// GetActivity returns the latest recorded actions
func (h *HTTPHandler) GetActivity(c *gin.Context) {
	limit := service.DefaultLogLines
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	actions, err := h.activity.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// Health returns health status
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authMiddleware enforces Bearer token authentication against the configured API token.
func (h *HTTPHandler) authMiddleware(c *gin.Context) {
	expected := h.apiToken
	if expected == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "WEB_API_TOKEN not set"})
		c.Abort()
		return
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
		c.Abort()
		return
	}

	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	c.Next()
}

// Helper functions

func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	msg, isUserErr := service.UserMessage(err)
	if !isUserErr {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch {
	case service.IsNotFound(err):
		status = http.StatusNotFound
	case service.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": msg})
}

func (h *HTTPHandler) actor(c *gin.Context) (models.Actor, bool) {
	userID, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return models.Actor{}, false
	}
	return models.Actor{ID: userID, Name: "api"}, true
}

func (h *HTTPHandler) actorAndIndex(c *gin.Context) (models.Actor, int, bool) {
	actor, ok := h.actor(c)
	if !ok {
		return models.Actor{}, 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return models.Actor{}, 0, false
	}
	return actor, index, true
}
