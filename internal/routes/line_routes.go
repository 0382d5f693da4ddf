package routes

import (
	"github.com/gin-gonic/gin"

	"busao_api/internal/controllers"
	"busao_api/internal/middleware"
)

func LineRoutes(r *gin.Engine, ctrl *controllers.LineController, auth *middleware.Auth) {
	lines := r.Group("/lines")
	{
		lines.GET("", ctrl.List)
		lines.GET("/:id", ctrl.Get)
	}

	protected := lines.Group("")
	protected.Use(auth.RequireAuth())
	{
		protected.POST("", ctrl.Create)
		protected.PUT("/:id", ctrl.Update)
		protected.DELETE("/:id", ctrl.Delete)
	}
}
