package tournament

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterReadRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/tournament/settings", h.GetSettings)
	r.GET("/tournament/teams", h.ListTeams)
	r.GET("/tournament/matches", h.ListMatches)
}

func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.PUT("/tournament/settings", h.UpdateSettings)
	r.POST("/tournament/teams", h.CreateTeam)
	r.DELETE("/tournament/teams/:id", h.DeleteTeam)
	r.POST("/tournament/matches", h.CreateMatch)
	r.PUT("/tournament/matches/:id/result", h.RecordResult)
	r.DELETE("/tournament/matches/:id", h.DeleteMatch)
}

func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.svc.EnsureSettings(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusOK, st.toDTO())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("invalid json or missing required fields")})
		return
	}

	st, err := h.svc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusOK, st.toDTO())
}

func (h *Handler) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("invalid json or missing required fields")})
		return
	}

	t, err := h.svc.CreateTeam(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusCreated, t.toDTO())
}

func (h *Handler) ListTeams(c *gin.Context) {
	ts, err := h.svc.ListTeams(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	out := make([]TeamResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.toDTO())
	}
	c.JSON(http.StatusOK, gin.H{"teams": out})
}

func (h *Handler) DeleteTeam(c *gin.Context) {
	if err := h.svc.DeleteTeam(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("invalid json or missing required fields")})
		return
	}

	m, err := h.svc.CreateMatch(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusCreated, m.toDTO())
}

func (h *Handler) ListMatches(c *gin.Context) {
	var stage *Stage
	if v := c.Query("stage"); v != "" {
		st, ok := ParseStage(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("unknown stage")})
			return
		}
		stage = &st
	}

	ms, err := h.svc.ListMatches(c.Request.Context(), stage)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.toDTO())
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}

func (h *Handler) RecordResult(c *gin.Context) {
	var req RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("invalid json or missing required fields")})
		return
	}

	m, err := h.svc.RecordResult(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusOK, m.toDTO())
}

func (h *Handler) DeleteMatch(c *gin.Context) {
	if err := h.svc.DeleteMatch(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.Status(http.StatusNoContent)
}
