package api

import (
	"net/http"
	"strconv"

	"runetick/internal/timeseries"

	"github.com/gin-gonic/gin"
)

// seriesQuery reads the id and interval of a price series request, writing a 400 when invalid.
func seriesQuery(c *gin.Context) (int64, timeseries.Interval, bool) {
	rawID, rawInterval := c.Query("id"), c.Query("interval")
	if rawID == "" || rawInterval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID and interval are required"})
		return 0, "", false
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return 0, "", false
	}

	interval, err := timeseries.ParseInterval(rawInterval)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interval"})
		return 0, "", false
	}
	return id, interval, true
}

func (h *handler) price(c *gin.Context) {
	id, interval, ok := seriesQuery(c)
	if !ok {
		return
	}
	history, err := h.market.PriceHistory(c.Request.Context(), id, interval)
	if err != nil {
		h.fail(c, err, "Failed to fetch price data")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *handler) indicators(c *gin.Context) {
	id, interval, ok := seriesQuery(c)
	if !ok {
		return
	}
	out, err := h.market.Indicators(c.Request.Context(), id, interval)
	if err != nil {
		h.fail(c, err, "Failed to compute indicators")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) latestPrice(c *gin.Context) {
	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	summary, err := h.market.LatestPrice(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to fetch latest item price")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) multipleItems(c *gin.Context) {
	raw := c.Query("ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item IDs are required"})
		return
	}

	items, err := h.market.MultipleItems(c.Request.Context(), parseIDs(raw))
	if err != nil {
		h.fail(c, err, "Failed to fetch multiple item prices")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) latestPrices(c *gin.Context) {
	quotes, err := h.market.LatestPrices(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch latest prices")
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *handler) changes(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Changes())
}

func (h *handler) mappings(c *gin.Context) {
	items, err := h.market.Mappings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch mappings")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) volumeData(c *gin.Context) {
	volumes, err := h.market.VolumeData(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch volume data")
		return
	}
	c.JSON(http.StatusOK, volumes)
}

func (h *handler) regulations(c *gin.Context) {
	raw, err := h.market.Regulations(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch regulations")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *handler) alchCost(c *gin.Context) {
	cost, err := h.market.AlchCost(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to calculate alch cost")
		return
	}
	c.JSON(http.StatusOK, cost)
}

func (h *handler) indices(c *gin.Context) {
	indices, err := h.market.Indices(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch indices")
		return
	}
	c.JSON(http.StatusOK, indices)
}

func (h *handler) news(c *gin.Context) {
	feed, err := h.market.News(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch or parse RSS feed")
		return
	}
	c.JSON(http.StatusOK, feed)
}
