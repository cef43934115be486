package handlers

import (
	"net/http"

	"curaconnect/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"dependencies": utils.GetHealthStatus(),
		})
	}
}
