package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

type themeBody struct {
	Theme domain.Theme `json:"theme" binding:"required"`
}

func (h *Handler) getTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.theme.Current())
}

func (h *Handler) putTheme(c *gin.Context) {
	var body themeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "theme is required")
		return
	}
	p, err := h.theme.Set(c.Request.Context(), body.Theme)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
