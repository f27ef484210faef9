package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/ticket"
)

// ListTickets handles GET /api/tickets.
func (h *Handler) ListTickets(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	tickets, err := h.tickets.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicket handles GET /api/tickets/:id.
func (h *Handler) GetTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	t, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// WeighIn handles POST /api/tickets/weigh-in.
func (h *Handler) WeighIn(c *gin.Context) {
	var req ticket.WeighInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	t, err := h.tickets.WeighIn(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// WeighOut handles POST /api/tickets/:id/weigh-out.
func (h *Handler) WeighOut(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var req ticket.WeighOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	t, err := h.tickets.WeighOut(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Finalize handles POST /api/tickets/:id/finalize.
func (h *Handler) Finalize(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var req ticket.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	t, err := h.tickets.Finalize(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func ticketID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid ticket ID"})
		return 0, false
	}
	return uint(id), true
}
