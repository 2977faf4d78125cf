package auth

import (
	"errors"

	"fonegitim-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

// Auth guards routes behind a live session.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := GetSessionAuto(c)
		if err != nil {
			util.HandleError(c, 401, errors.New("request does not carry a valid session"))
			c.Abort()
			return
		}

		if session.Expired() {
			util.HandleError(c, 401, errors.New("session expired, please login again"))
			c.Abort()
			return
		}

		c.Next()
	}
}
