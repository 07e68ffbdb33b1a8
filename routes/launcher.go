package routes

import (
	"vmagma/controllers"

	"github.com/gin-gonic/gin"
)

func SetupLauncherRoutes(router *gin.RouterGroup) {
	router.GET("/launcher/url", controllers.GetGameURL)
	router.GET("/launcher/installed", controllers.GetGameInstalled)
}
