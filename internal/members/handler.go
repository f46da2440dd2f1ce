package members

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 8 << 20

type Handler struct{ svc *Service }

func RegisterReadRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/members", h.List)
	r.GET("/members/:id", h.Get)
}

func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/members", h.Create)
	r.PATCH("/members/:id", h.Rename)
	r.PUT("/members/:id/avatar", h.ReplaceAvatar)
	r.DELETE("/members/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	ms, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	out := make([]MemberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, h.svc.toDTO(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, h.svc.toDTO(m))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "invalid json or missing required fields"))
		return
	}

	m, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/members/"+m.ID)
	c.JSON(http.StatusCreated, h.svc.toDTO(m))
}

func (h *Handler) Rename(c *gin.Context) {
	var req RenameMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "invalid json or missing required fields"))
		return
	}

	m, err := h.svc.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, h.svc.toDTO(m))
}

func (h *Handler) ReplaceAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "avatar file is required"))
		return
	}
	if file.Size > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "avatar file too large"))
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(ErrCodeValidation, "failed to read avatar file"))
		return
	}
	defer f.Close()

	m, err := h.svc.ReplaceAvatar(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, h.svc.toDTO(m))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

func toHTTPStatus(err error) int {
	if de, ok := err.(*DomainError); ok {
		switch de.Code {
		case ErrCodeValidation:
			return http.StatusBadRequest
		case ErrCodeNotFound:
			return http.StatusNotFound
		case ErrCodePersistence, ErrCodeCascade:
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
