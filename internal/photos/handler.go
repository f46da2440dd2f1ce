package photos

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 20 << 20

type Handler struct{ svc *Service }

func RegisterReadRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/photos", h.History)
	r.GET("/photos/:date", h.ByDate)
}

func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/photos/:date", h.Upload)
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo file"})
		return
	}
	defer f.Close()

	p, err := h.svc.Upload(c.Request.Context(), c.Param("date"), file.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.svc.toDTO(p))
}

func (h *Handler) ByDate(c *gin.Context) {
	p, err := h.svc.ByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photo"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no photo for this date"})
		return
	}
	c.JSON(http.StatusOK, h.svc.toDTO(*p))
}

func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ps, err := h.svc.History(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load photo history"})
		return
	}

	out := make([]PhotoResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.svc.toDTO(p))
	}
	c.JSON(http.StatusOK, gin.H{"photos": out})
}
