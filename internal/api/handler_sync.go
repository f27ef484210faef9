package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListSyncQueue handles GET /api/sync/queue, newest entries first.
func (h *Handler) ListSyncQueue(c *gin.Context) {
	entries, err := h.store.ListSyncEntries(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// RunSync handles POST /api/sync/run: one on-demand drain cycle.
func (h *Handler) RunSync(c *gin.Context) {
	if err := h.dispatcher.DrainPending(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RetrySyncEntry handles POST /api/sync/queue/:id/retry, resetting a failed
// entry to pending.
func (h *Handler) RetrySyncEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}

	entry, err := h.dispatcher.Requeue(c.Request.Context(), uint(id))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if entry == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "sync entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
