package routes

import (
	"github.com/gin-gonic/gin"

	"busao_api/internal/controllers"
	"busao_api/internal/middleware"
)

func StopRoutes(r *gin.Engine, ctrl *controllers.StopController, auth *middleware.Auth) {
	stops := r.Group("/stops")
	{
		stops.GET("", ctrl.List)
		stops.GET("/:id", ctrl.Get)
	}

	protected := stops.Group("")
	protected.Use(auth.RequireAuth())
	{
		protected.POST("", ctrl.Create)
		protected.PUT("/:id", ctrl.Update)
		protected.DELETE("/:id", ctrl.Delete)
	}
}
