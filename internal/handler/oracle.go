package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
)

type OracleHandler struct {
	Engine *market.Engine
}

func (h *OracleHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/oracle/resolve", h.resolve)
}

type resolveRequest struct {
	Price     string `json:"price"`
	Timestamp uint64 `json:"timestamp"`
	RoundID   uint64 `json:"round_id"`
}

func (h *OracleHandler) resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid price", nil)
		return
	}
	err = h.Engine.ResolveRound(c.Request.Context(), caller(c), market.OraclePayload{
		Price:     price,
		Timestamp: req.Timestamp,
		RoundID:   req.RoundID,
	})
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"round_id": req.RoundID, "price": price}, nil)
}
