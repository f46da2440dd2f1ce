package partners

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ session *Session }

// RegisterReadRoutes mounts the public listing used by the carrom page.
func RegisterReadRoutes(r gin.IRoutes, session *Session) {
	h := &Handler{session: session}
	r.GET("/partners/:date", h.ListPairs)
}

// RegisterAdminRoutes mounts the mutating pair workflow.
func RegisterAdminRoutes(r gin.IRoutes, session *Session) {
	h := &Handler{session: session}
	r.POST("/partners/:date/pairs", h.CreateDraft)
	r.PUT("/partners/:date/pairs/:id/slots/:slot", h.SetSlot)
	r.DELETE("/partners/:date/pairs/:id", h.RemovePair)
}

func (h *Handler) ListPairs(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	pairs, err := h.session.ListPairs(c.Request.Context(), date)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": ToDTOs(pairs)})
}

func (h *Handler) CreateDraft(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	pair, err := h.session.CreateDraft(c.Request.Context(), date)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusCreated, pair.ToDTO())
}

func (h *Handler) SetSlot(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slot, ok := ParseSlot(c.Param("slot"))
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "slot must be player1 or player2"))
		return
	}

	var req SetSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "invalid json"))
		return
	}

	pair, err := h.session.SetSlot(c.Request.Context(), date, c.Param("id"), slot, req.MemberID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, pair.ToDTO())
}

func (h *Handler) RemovePair(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	if err := h.session.RemovePair(c.Request.Context(), date, c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

func dateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if _, err := time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "date must be YYYY-MM-DD"))
		return "", false
	}
	return date, true
}

func toHTTPStatus(err error) int {
	if de, ok := err.(*DomainError); ok {
		switch de.Code {
		case ErrCodeValidation:
			return http.StatusBadRequest
		case ErrCodeNotFound:
			return http.StatusNotFound
		case ErrCodeDuplicate:
			return http.StatusConflict
		case ErrCodePersistence:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

type errorDTO struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	if de, ok := err.(*DomainError); ok {
		return errorBody(de.Code, de.Message)
	}
	return errorBody("INTERNAL", err.Error())
}
