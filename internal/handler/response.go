package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// EngineError maps the engine's closed error set onto HTTP statuses and
// keeps the stable error code in the response meta.
func EngineError(c *gin.Context, err error) {
	var engineErr *market.Error
	if !errors.As(err, &engineErr) {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Error(c, statusForCode(engineErr.Code), engineErr.Message, map[string]any{
		"error_code": engineErr.Code,
	})
}

func statusForCode(code string) int {
	switch code {
	case "unauthorized_admin", "unauthorized_oracle", "unauthorized_user":
		return http.StatusForbidden
	case "already_initialized", "round_already_active", "already_bet",
		"admin_not_set", "oracle_not_set":
		return http.StatusConflict
	case "no_active_round":
		return http.StatusNotFound
	case "invalid_bet_amount", "invalid_price", "invalid_duration",
		"invalid_mode", "invalid_price_scale", "wrong_mode":
		return http.StatusBadRequest
	case "round_ended", "round_not_ended", "insufficient_balance",
		"stale_oracle_data", "invalid_oracle_round", "overflow":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
