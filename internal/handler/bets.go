package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
	"pricebet/internal/num"
)

type BetHandler struct {
	Engine *market.Engine
}

func (h *BetHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/bets", h.placeBet)
	r.POST("/api/v1/predictions", h.placePrediction)
	r.POST("/api/v1/predictions/price", h.predictPrice)

	r.GET("/api/v1/positions", h.listPositions)
	r.GET("/api/v1/predictions", h.listPredictions)
}

type placeBetRequest struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
	Side   string `json:"side"`
}

func (h *BetHandler) placeBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount", nil)
		return
	}
	side := market.BetSide(strings.ToLower(strings.TrimSpace(req.Side)))
	if side != market.SideUp && side != market.SideDown {
		Error(c, http.StatusBadRequest, "side must be up or down", nil)
		return
	}
	err = h.Engine.PlaceBet(c.Request.Context(), caller(c),
		market.Principal(req.User), amount, side)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"user": req.User, "amount": amount, "side": side}, nil)
}

type placePredictionRequest struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
	// PredictedPrice is the x10000 scaled integer; PredictedPriceDecimal
	// is an alternative decimal form like "2.2970". Exactly one is used,
	// the scaled integer winning when both are present.
	PredictedPrice        string `json:"predicted_price"`
	PredictedPriceDecimal string `json:"predicted_price_decimal"`
}

func (r placePredictionRequest) price() (num.Uint128, error) {
	if strings.TrimSpace(r.PredictedPrice) != "" {
		return parsePrice(r.PredictedPrice)
	}
	return parseScaledDecimal(r.PredictedPriceDecimal)
}

func (h *BetHandler) placePrediction(c *gin.Context) {
	var req placePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount", nil)
		return
	}
	price, err := req.price()
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid predicted price", nil)
		return
	}
	err = h.Engine.PlacePrecisionPrediction(c.Request.Context(), caller(c),
		market.Principal(req.User), amount, price)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"user": req.User, "amount": amount, "predicted_price": price}, nil)
}

// predictPrice is the argument-reordered alias route; the body names the
// price first but the engine semantics are identical.
type predictPriceRequest struct {
	User                  string `json:"user"`
	PredictedPrice        string `json:"predicted_price"`
	PredictedPriceDecimal string `json:"predicted_price_decimal"`
	Amount                string `json:"amount"`
}

func (h *BetHandler) predictPrice(c *gin.Context) {
	var req predictPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	price, err := placePredictionRequest{
		PredictedPrice:        req.PredictedPrice,
		PredictedPriceDecimal: req.PredictedPriceDecimal,
	}.price()
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid predicted price", nil)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid amount", nil)
		return
	}
	err = h.Engine.PredictPrice(c.Request.Context(), caller(c),
		market.Principal(req.User), price, amount)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"user": req.User, "amount": amount, "predicted_price": price}, nil)
}

func (h *BetHandler) listPositions(c *gin.Context) {
	positions, err := h.Engine.GetUpDownPositions(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, positions, map[string]any{"count": len(positions)})
}

func (h *BetHandler) listPredictions(c *gin.Context) {
	predictions, err := h.Engine.GetPrecisionPredictions(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, predictions, map[string]any{"count": len(predictions)})
}
