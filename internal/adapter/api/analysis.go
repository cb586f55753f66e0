package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/weatherwise-service/internal/analysis"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

const dateLayout = "2006-01-02"

type analyzeBody struct {
	Location *domain.Location `json:"location"`
	// Date is a calendar date, "YYYY-MM-DD".
	Date    string       `json:"date"`
	Include *includeBody `json:"include"`
}

// includeBody selects the optional categories; omitted ones default to true.
type includeBody struct {
	Precipitation *bool `json:"precipitation"`
	Wind          *bool `json:"wind"`
	Humidity      *bool `json:"humidity"`
}

func (b *includeBody) categories() domain.Categories {
	c := domain.AllCategories()
	if b == nil {
		return c
	}
	if b.Precipitation != nil {
		c.Precipitation = *b.Precipitation
	}
	if b.Wind != nil {
		c.Wind = *b.Wind
	}
	if b.Humidity != nil {
		c.Humidity = *b.Humidity
	}
	return c
}

func (h *Handler) analyze(c *gin.Context) {
	var body analyzeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid analyze body: "+err.Error())
		return
	}

	req := domain.Request{Location: body.Location}
	if d := strings.TrimSpace(body.Date); d != "" {
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			badRequest(c, "date must be formatted YYYY-MM-DD")
			return
		}
		req.Date = date
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.analyzer.Present(report, body.Include.categories()))
}

// lastAnalysis re-presents the most recent report under the current settings.
func (h *Handler) lastAnalysis(c *gin.Context) {
	report, ok := h.analyzer.Last()
	if !ok {
		h.fail(c, domain.ErrNoData)
		return
	}
	c.JSON(http.StatusOK, h.analyzer.Present(report, domain.AllCategories()))
}

func (h *Handler) export(c *gin.Context) {
	format, err := analysis.ParseFormat(c.DefaultQuery("format", string(analysis.FormatJSON)))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.analyzer.Export(format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType+"; charset=utf-8", out.Body)
}
