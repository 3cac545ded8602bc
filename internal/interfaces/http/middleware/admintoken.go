package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/gymdesk/gymdesk/internal/shared/constants"
	apperrors "github.com/gymdesk/gymdesk/internal/shared/errors"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/utils"
)

// AdminToken guards admin routes with a static token sent in X-Admin-Token.
// An empty configured token rejects every request.
func AdminToken(token string, log logger.Interface) gin.HandlerFunc {
	if token == "" {
		log.Warnw("server.admin_token is empty, admin endpoints are disabled")
	}
	expected := []byte(token)

	return func(c *gin.Context) {
		provided := c.GetHeader(constants.HeaderAdminToken)
		if len(expected) == 0 || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			log.Warnw("admin request rejected",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("Invalid or missing admin token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
