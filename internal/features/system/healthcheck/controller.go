package system_healthcheck

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckController struct {
	backendName string
}

func NewHealthcheckController(backendName string) *HealthcheckController {
	return &HealthcheckController{backendName}
}

func (c *HealthcheckController) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthcheck", c.Healthcheck)
}

// Healthcheck reports process liveness; it deliberately does not round-trip
// the backend so load balancers do not hammer the log store.
func (c *HealthcheckController) Healthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": c.backendName,
	})
}
