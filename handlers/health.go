package handlers

import (
	"net/http"

	"leadline/utils"

	"github.com/gin-gonic/gin"
)

// ActiveCounter reports how many calls are live.
type ActiveCounter interface {
	Active() int
}

// HealthHandler reports the last dependency health snapshot.
func HealthHandler(calls ActiveCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"status":       "ok",
			"dependencies": utils.GetHealthStatus(),
		}
		if calls != nil {
			resp["active_calls"] = calls.Active()
		}
		c.JSON(http.StatusOK, resp)
	}
}
