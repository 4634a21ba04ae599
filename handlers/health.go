package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zeena/utils"
)

// HealthCheck reports the latest dependency health snapshot.
func HealthCheck(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
