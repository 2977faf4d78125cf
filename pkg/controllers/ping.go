package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Ping answers the liveness check used by deploy health monitoring.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong", "serverTime": time.Now().Local()})
}
