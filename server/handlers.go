package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/juqihq/feedcore/feed"
	Logger "github.com/juqihq/feedcore/utils/log"
	"github.com/pkg/errors"
)

// FeedHandler binds the single feed operation. Everything else the product
// API does (auth, publishing, moderation tooling) lives in other services;
// this server only dispatches feed reads.
func FeedHandler(router *feed.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req feed.FeedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
			return
		}

		page, err := router.Get(c.Request.Context(), &req)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, feed.ErrUnknownFeedType),
				errors.Is(err, feed.ErrMissingViewer),
				errors.Is(err, feed.ErrMissingScope):
				status = http.StatusBadRequest
			case errors.Is(err, feed.ErrModeratorOnly):
				status = http.StatusForbidden
			default:
				Logger.Log.WithError(err).WithField("feed_type", req.FeedType).Error("feed query failed")
			}
			c.JSON(status, gin.H{"msg": err.Error()})
			return
		}

		c.JSON(http.StatusOK, page)
	}
}
