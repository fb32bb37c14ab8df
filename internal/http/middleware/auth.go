package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/herald/common/logger"
	"basegraph.app/herald/internal/http/dto"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/service"
)

const UserKey = "user"

// BasicAuth authenticates email:api_key credentials and stores the user in
// the gin context under UserKey.
func BasicAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		email, apiKey, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="herald"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("missing credentials"))
			return
		}

		user, err := auth.AuthenticateBasic(ctx, email, apiKey)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				slog.ErrorContext(ctx, "authentication failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error("internal server error"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("invalid credentials"))
			return
		}

		c.Request = c.Request.WithContext(logger.WithLogFields(ctx, logger.LogFields{
			RealmID: logger.Ptr(user.RealmID),
			UserID:  logger.Ptr(user.ID),
		}))
		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by BasicAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	user, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}
