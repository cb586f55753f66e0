package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/settings"
)

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Current())
}

// putSettings decodes the body over the current record, so fields the body
// omits keep their values, then saves the whole record.
func (h *Handler) putSettings(c *gin.Context) {
	rec := h.settings.Current()
	if err := c.ShouldBindJSON(&rec); err != nil {
		badRequest(c, "invalid settings body: "+err.Error())
		return
	}
	if err := h.settings.Save(c.Request.Context(), rec); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) getSettingsForm(c *gin.Context) {
	c.JSON(http.StatusOK, settings.FormFromSettings(h.settings.Current()))
}

func (h *Handler) putSettingsForm(c *gin.Context) {
	form := settings.FormFromSettings(h.settings.Current())
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "invalid settings form: "+err.Error())
		return
	}
	rec, err := h.settings.Update(c.Request.Context(), func(s *domain.Settings) {
		*s = form.Apply(*s)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.FormFromSettings(rec))
}

func (h *Handler) resetThresholds(c *gin.Context) {
	rec, err := h.settings.ResetThresholds(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) resetAll(c *gin.Context) {
	rec, err := h.settings.ResetAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) getSettingsSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}

func (h *Handler) getLabels(c *gin.Context) {
	c.JSON(http.StatusOK, domain.GenerateLabels(h.settings.Current()))
}
