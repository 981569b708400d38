package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collab-board/internal/response"
)

// Recovery turns a panic in a handler into a 500 error envelope. The log
// entry carries the matched route and, when present, the board and caller.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.Any("error", rec),
				zap.String("error_type", fmt.Sprintf("%T", rec)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("route", c.FullPath()),
			}
			if boardID := c.Param("boardId"); boardID != "" {
				fields = append(fields, zap.String("board_id", boardID))
			}
			if userID, ok := c.Get("user_id"); ok {
				fields = append(fields, zap.Any("user_id", userID))
			}
			logger.Error("Panic recovered", append(fields, zap.Stack("stacktrace"))...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
