package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 10
)

type placesBody struct {
	Places []domain.Place `json:"places"`
}

type defaultLocationBody struct {
	Location *domain.Location `json:"location"`
}

func (h *Handler) geocode(c *gin.Context) {
	if h.geocoder == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "place search is disabled"})
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "query parameter q is required")
		return
	}
	limit := defaultSearchLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxSearchLimit {
			badRequest(c, "limit must be between 1 and 10")
			return
		}
		limit = n
	}

	places, err := h.geocoder.Search(c.Request.Context(), q, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if places == nil {
		places = []domain.Place{}
	}
	c.JSON(http.StatusOK, placesBody{Places: places})
}

// defaultLocation resolves the defaultLocation setting. An empty setting
// yields {"location": null}.
func (h *Handler) defaultLocation(c *gin.Context) {
	loc, err := domain.ResolveDefaultLocation(c.Request.Context(), h.settings.Current().DefaultLocation, h.geocoder, h.logger)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, defaultLocationBody{Location: loc})
}
