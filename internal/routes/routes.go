package routes

import (
	"net/http"
	"time"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"busao_api/internal/controllers"
	"busao_api/internal/middleware"
)

// Controllers groups the request handlers wired into the router. Each one
// carries its own injected database handle.
type Controllers struct {
	Auth  *controllers.AuthController
	Lines *controllers.LineController
	Stops *controllers.StopController
	Users *controllers.UserController
}

func SetupRouter(ctrl Controllers, auth *middleware.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())

	r.GET("/status", Status)

	AuthRoutes(r, ctrl.Auth)
	LineRoutes(r, ctrl.Lines, auth)
	StopRoutes(r, ctrl.Stops, auth)
	UserRoutes(r, ctrl.Users, auth)

	return r
}

// Status is the liveness probe used by the frontend.
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "API up and running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
