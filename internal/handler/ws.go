package handler

import (
	"github.com/gin-gonic/gin"

	"pricebet/internal/events"
)

type EventsHandler struct {
	Hub *events.Hub
}

func (h *EventsHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/events/ws", func(c *gin.Context) {
		h.Hub.ServeWS(c.Writer, c.Request)
	})
}
