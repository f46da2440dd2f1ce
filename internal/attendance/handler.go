package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"govindo-backend/internal/partners"
)

type Handler struct{ svc *Service }

// RegisterReadRoutes mounts the listings used by the Adda and Carrom pages.
func RegisterReadRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/attendance", h.List)
	r.GET("/attendance/stats", h.Stats)
	r.GET("/attendance/:section/:date", h.ListPresent)
}

// RegisterAdminRoutes mounts the present/absent toggles.
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/attendance", h.MarkPresent)
	r.DELETE("/attendance/:section/:date/:member_id", h.MarkAbsent)
}

func (h *Handler) MarkPresent(c *gin.Context) {
	var req MarkPresentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("invalid json or missing required fields")})
		return
	}
	section, _ := ParseSection(req.Section)

	rec, err := h.svc.MarkPresent(c.Request.Context(), req.Date, section, req.MemberID)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusCreated, rec.toDTO())
}

func (h *Handler) MarkAbsent(c *gin.Context) {
	section, ok := ParseSection(c.Param("section"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("section must be Adda or Carrom")})
		return
	}

	res, err := h.svc.MarkAbsent(c.Request.Context(), c.Param("date"), section, c.Param("member_id"))

	var cascadeErr *partners.CascadeError
	if err != nil && !errors.As(err, &cascadeErr) {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}

	resp := MarkAbsentResponse{
		Removed:      true,
		PairsCleared: partners.ToDTOs(res.PairsCleared),
	}
	// the removal succeeded; a failed cascade write is only a warning
	if cascadeErr != nil {
		resp.CascadeWarning = cascadeErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPresent(c *gin.Context) {
	section, ok := ParseSection(c.Param("section"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("section must be Adda or Carrom")})
		return
	}

	recs, err := h.svc.ListPresent(c.Request.Context(), c.Param("date"), section)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}

	out := make([]RecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDTO())
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	if v := c.Query("member_id"); v != "" {
		q.MemberID = &v
	}
	if v := c.Query("section"); v != "" {
		section, ok := ParseSection(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("section must be Adda or Carrom")})
			return
		}
		q.Section = &section
	}
	if v := c.Query("on"); v != "" {
		q.On = &v
	}
	if v := c.Query("from"); v != "" {
		q.From = &v
	}
	if v := c.Query("to"); v != "" {
		q.To = &v
	}

	recs, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}

	out := make([]RecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDTO())
	}
	c.JSON(http.StatusOK, gin.H{"records": out, "total": total})
}

func (h *Handler) Stats(c *gin.Context) {
	section, ok := ParseSection(c.DefaultQuery("section", string(SectionCarrom)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrValidation("section must be Adda or Carrom")})
		return
	}
	req := StatsRequest{
		Section: section,
		From:    c.Query("from"),
		To:      c.Query("to"),
		Limit:   parseIntDefault(c.Query("limit"), 10),
	}

	rows, err := h.svc.Stats(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": rows})
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
