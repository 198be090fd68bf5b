package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Prediction Round Settlement Engine

Two-mode prediction market: Up/Down rounds pay winners proportionally
from the losing pool; Precision rounds pay the closest price guess the
whole pot, split on ties.

## Auth

Mutating routes require the X-Acting-Principal header. The engine
compares this principal against the admin, oracle, or acting user.

## Amounts and prices

Amounts are 7-decimal integer strings ("10000000000" = 1000 units).
Precision prices are x10000 scaled integers ("22970" = 2.2970); the
prediction routes also accept predicted_price_decimal ("2.2970").

## Routes

Admin:
- POST /api/v1/admin/initialize   {admin, oracle}
- POST /api/v1/admin/windows      {bet_window, run_window}
- POST /api/v1/admin/rounds       {start_price, mode}   mode 0=updown 1=precision

Betting:
- POST /api/v1/bets               {user, amount, side}  side up|down
- POST /api/v1/predictions        {user, amount, predicted_price}
- POST /api/v1/predictions/price  {user, predicted_price, amount}  (alias)

Oracle:
- POST /api/v1/oracle/resolve     {price, timestamp, round_id}

Users:
- POST /api/v1/users/:user/claim
- POST /api/v1/users/:user/mint
- GET  /api/v1/users/:user/{balance,pending,stats,position,prediction}

Reads:
- GET /api/v1/admin
- GET /api/v1/oracle
- GET /api/v1/rounds/active
- GET /api/v1/rounds/last-id
- GET /api/v1/windows
- GET /api/v1/positions
- GET /api/v1/predictions

Events:
- GET /api/v1/events/ws           websocket stream of resolution events

Infra:
- GET /healthz
- GET /readyz
- GET /debug/pprof/*
`)
	})
}
