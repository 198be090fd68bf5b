package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricebet/internal/market"
)

type AdminHandler struct {
	Engine *market.Engine
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/admin")
	group.POST("/initialize", h.initialize)
	group.POST("/windows", h.setWindows)
	group.POST("/rounds", h.createRound)

	r.GET("/api/v1/admin", h.getAdmin)
	r.GET("/api/v1/oracle", h.getOracle)
	r.GET("/api/v1/rounds/active", h.getActiveRound)
	r.GET("/api/v1/rounds/last-id", h.getLastRoundID)
	r.GET("/api/v1/windows", h.getWindows)
}

type initializeRequest struct {
	Admin  string `json:"admin"`
	Oracle string `json:"oracle"`
}

func (h *AdminHandler) initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Admin = strings.TrimSpace(req.Admin)
	req.Oracle = strings.TrimSpace(req.Oracle)
	if req.Admin == "" || req.Oracle == "" {
		Error(c, http.StatusBadRequest, "admin and oracle required", nil)
		return
	}
	err := h.Engine.Initialize(c.Request.Context(),
		market.Principal(req.Admin), market.Principal(req.Oracle))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"admin": req.Admin, "oracle": req.Oracle}, nil)
}

type setWindowsRequest struct {
	BetWindow uint64 `json:"bet_window"`
	RunWindow uint64 `json:"run_window"`
}

func (h *AdminHandler) setWindows(c *gin.Context) {
	var req setWindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	err := h.Engine.SetWindows(c.Request.Context(), caller(c), req.BetWindow, req.RunWindow)
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, market.WindowConfig{BetWindow: req.BetWindow, RunWindow: req.RunWindow}, nil)
}

type createRoundRequest struct {
	StartPrice string `json:"start_price"`
	Mode       uint32 `json:"mode"`
}

func (h *AdminHandler) createRound(c *gin.Context) {
	var req createRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	startPrice, err := parsePrice(req.StartPrice)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid start_price", nil)
		return
	}
	round, err := h.Engine.CreateRound(c.Request.Context(), caller(c),
		startPrice, market.RoundMode(req.Mode))
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, round, nil)
}

func (h *AdminHandler) getAdmin(c *gin.Context) {
	admin, err := h.Engine.GetAdmin(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"admin": admin}, nil)
}

func (h *AdminHandler) getOracle(c *gin.Context) {
	oracle, err := h.Engine.GetOracle(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"oracle": oracle}, nil)
}

func (h *AdminHandler) getActiveRound(c *gin.Context) {
	round, err := h.Engine.GetActiveRound(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, round, nil)
}

func (h *AdminHandler) getLastRoundID(c *gin.Context) {
	id, err := h.Engine.GetLastRoundID(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, gin.H{"last_round_id": id}, nil)
}

func (h *AdminHandler) getWindows(c *gin.Context) {
	win, err := h.Engine.GetWindows(c.Request.Context())
	if err != nil {
		EngineError(c, err)
		return
	}
	Ok(c, win, nil)
}
