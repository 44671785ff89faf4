package handlers

import (
	"net/http"

	"concierge/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the latest dependency snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"dependencies": utils.GetHealthStatus(),
	})
}
