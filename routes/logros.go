package routes

import (
	"vmagma/controllers"

	"github.com/gin-gonic/gin"
)

func SetupLogrosRoutes(router *gin.RouterGroup) {
	// Specific routes must come before the parameterized route
	router.GET("/logros", controllers.GetLogros)
	router.GET("/logros/disponibles", controllers.GetLogrosDisponibles)
	router.GET("/logros/desbloqueados", controllers.GetLogrosDesbloqueados)
	router.GET("/logros/:id", controllers.GetLogro)
}
