package routes

import (
	"github.com/gin-gonic/gin"

	"busao_api/internal/controllers"
)

func AuthRoutes(r *gin.Engine, ctrl *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Register)
		auth.POST("/login", ctrl.Login)
	}
}
