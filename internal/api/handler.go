package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"runetick/internal/market"
	"runetick/internal/timeseries"
	"runetick/internal/userstore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handler struct {
	market Market
	users  Users
	live   Live
	log    *zap.Logger
	now    func() time.Time
}

// fail maps err to a response. Unknown errors become a 500 with msg; the cause is only logged.
func (h *handler) fail(c *gin.Context, err error, msg string) {
	var verr *userstore.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Errors})
	case errors.Is(err, timeseries.ErrUnknownInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interval"})
	case errors.Is(err, market.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, userstore.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, userstore.ErrLogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Log not found"})
	case errors.Is(err, userstore.ErrWatchlistItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Watchlist item not found"})
	default:
		h.log.Error(msg, zap.String("route", routeOf(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
	_ = c.Error(err)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) liveClock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"epochTime": h.now().UnixMilli()})
}

func (h *handler) serveWS(c *gin.Context) {
	if err := h.live.ServeWS(c.Writer, c.Request); err != nil {
		// the upgrader has already written the error response
		h.log.Debug("websocket upgrade failed", zap.Error(err))
	}
}

// parseIDs parses a comma separated list, skipping entries that are not item IDs.
func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
