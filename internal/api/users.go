package api

import (
	"net/http"
	"strconv"

	"runetick/internal/userstore"

	"github.com/gin-gonic/gin"
)

func bodyError(field, msg string) *userstore.ValidationError {
	return &userstore.ValidationError{Errors: []userstore.FieldError{{Field: field, Message: msg}}}
}

func (h *handler) ensureUser(c *gin.Context) {
	settings, err := h.users.Ensure(c.Request.Context(), c.GetString(ctxUID), c.GetString(ctxEmail))
	if err != nil {
		h.fail(c, err, "Failed to retrieve or create user")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handler) getUser(c *gin.Context) {
	settings, err := h.users.Get(c.Request.Context(), c.GetString(ctxUID))
	if err != nil {
		h.fail(c, err, "Failed to fetch user data")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handler) updateUser(c *gin.Context) {
	patch, err := c.GetRawData()
	if err != nil {
		h.fail(c, bodyError("body", err.Error()), "Failed to update user data")
		return
	}
	settings, err := h.users.Update(c.Request.Context(), c.GetString(ctxUID), patch)
	if err != nil {
		h.fail(c, err, "Failed to update user data")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.GetString(ctxUID)); err != nil {
		h.fail(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) addLog(c *gin.Context) {
	var req userstore.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bodyError("body", err.Error()), "Failed to create log")
		return
	}

	log, err := userstore.NewTradeLog(req, h.now())
	if err != nil {
		h.fail(c, err, "Failed to create log")
		return
	}
	if err := h.users.AddLog(c.Request.Context(), c.GetString(ctxUID), log); err != nil {
		h.fail(c, err, "Failed to create log")
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *handler) logs(c *gin.Context) {
	logs, err := h.users.Logs(c.Request.Context(), c.GetString(ctxUID))
	if err != nil {
		h.fail(c, err, "Failed to fetch logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *handler) deleteLog(c *gin.Context) {
	if err := h.users.DeleteLog(c.Request.Context(), c.GetString(ctxUID), c.Param("logId")); err != nil {
		h.fail(c, err, "Failed to delete log")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Log deleted successfully"})
}

func (h *handler) addToWatchlist(c *gin.Context) {
	var req struct {
		ItemID *int64 `json:"itemId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == nil {
		h.fail(c, bodyError("itemId", "Item ID must be an integer"), "Failed to create watchlist item")
		return
	}

	if err := h.users.AddToWatchlist(c.Request.Context(), c.GetString(ctxUID), *req.ItemID); err != nil {
		h.fail(c, err, "Failed to create watchlist item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"itemId": *req.ItemID})
}

func (h *handler) watchlist(c *gin.Context) {
	items, err := h.users.Watchlist(c.Request.Context(), c.GetString(ctxUID))
	if err != nil {
		h.fail(c, err, "Failed to fetch watchlist")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) removeFromWatchlist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		h.fail(c, userstore.ErrWatchlistItemNotFound, "Failed to delete watchlist item")
		return
	}
	if err := h.users.RemoveFromWatchlist(c.Request.Context(), c.GetString(ctxUID), id); err != nil {
		h.fail(c, err, "Failed to delete watchlist item")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) joinBeta(c *gin.Context) {
	if err := h.users.JoinBeta(c.Request.Context(), c.GetString(ctxUID)); err != nil {
		h.fail(c, err, "Failed to add user to beta list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User added to beta list"})
}
