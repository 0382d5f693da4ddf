package routes

import (
	"github.com/gin-gonic/gin"

	"busao_api/internal/controllers"
	"busao_api/internal/middleware"
)

// The whole user surface requires a token, listing included: the only
// consumer is the admin console.
func UserRoutes(r *gin.Engine, ctrl *controllers.UserController, auth *middleware.Auth) {
	users := r.Group("/users")
	users.Use(auth.RequireAuth())
	{
		users.GET("", ctrl.List)
		users.GET("/:id", ctrl.Get)
		users.PUT("/:id", ctrl.Update)
		users.DELETE("/:id", ctrl.Delete)
	}
}
