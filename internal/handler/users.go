package handler

import (
	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
)

type UserHandler struct {
	Engine *market.Engine
}

func (h *UserHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/users/:user")
	group.POST("/claim", h.claim)
	group.POST("/mint", h.mint)
	group.GET("/balance", h.balance)
	group.GET("/pending", h.pending)
	group.GET("/stats", h.stats)
	group.GET("/position", h.position)
	group.GET("/prediction", h.prediction)
}

func pathUser(c *gin.Context) market.Principal {
	return market.Principal(c.Param("user"))
}

func (h *UserHandler) claim(c *gin.Context) {
	claimed, err := h.Engine.ClaimWinnings(c.Request.Context(), caller(c), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"claimed": claimed}, nil)
}

func (h *UserHandler) mint(c *gin.Context) {
	balance, err := h.Engine.MintInitial(c.Request.Context(), caller(c), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"balance": balance}, nil)
}

func (h *UserHandler) balance(c *gin.Context) {
	balance, err := h.Engine.Balance(c.Request.Context(), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"balance": balance}, nil)
}

func (h *UserHandler) pending(c *gin.Context) {
	pending, err := h.Engine.GetPendingWinnings(c.Request.Context(), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"pending": pending}, nil)
}

func (h *UserHandler) stats(c *gin.Context) {
	stats, err := h.Engine.GetUserStats(c.Request.Context(), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, stats, nil)
}

func (h *UserHandler) position(c *gin.Context) {
	pos, err := h.Engine.GetUserPosition(c.Request.Context(), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, pos, nil)
}

func (h *UserHandler) prediction(c *gin.Context) {
	pred, err := h.Engine.GetUserPrecisionPrediction(c.Request.Context(), pathUser(c))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, pred, nil)
}
