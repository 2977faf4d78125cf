package middleware

import (
	"net/http"

	"fonegitim-api-io/api/internal/auth"
	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

// AdminOnly middleware restricts access to Super and Mod users only
func AdminOnly(userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.GetSessionAuto(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		currentUser, err := userService.GetUserByID(c.Request.Context(), session.UserId)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		if currentUser.Role != models.Super && currentUser.Role != models.Mod {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions: admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
