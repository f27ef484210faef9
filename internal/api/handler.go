package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/dispatch"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/errs"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/store"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/ticket"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/weight"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	tickets    *ticket.Service
	weights    *weight.Manager
	dispatcher *dispatch.Dispatcher
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, tickets *ticket.Service, weights *weight.Manager, dispatcher *dispatch.Dispatcher) *Handler {
	return &Handler{
		store:      s,
		tickets:    tickets,
		weights:    weights,
		dispatcher: dispatcher,
	}
}

// abortWithError maps tagged errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	if e, ok := err.(*errs.Error); ok {
		message = e.Message
		switch e.Kind {
		case errs.KindValidation:
			status = http.StatusBadRequest
		case errs.KindNotFound:
			status = http.StatusNotFound
		case errs.KindConnection:
			status = http.StatusBadRequest
			if e.Err != nil {
				message = e.Message + ": " + e.Err.Error()
			}
		case errs.KindDelivery:
			status = http.StatusBadGateway
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
