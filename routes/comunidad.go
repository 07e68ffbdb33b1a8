package routes

import (
	"vmagma/controllers"

	"github.com/gin-gonic/gin"
)

func SetupComunidadRoutes(router *gin.RouterGroup) {
	router.GET("/comunidad/ranking", controllers.GetRanking)
	router.GET("/comunidad/actividad", controllers.GetActividad)
	router.GET("/comunidad/eventos", controllers.GetEventos)
	router.POST("/comunidad/logros/desbloquear", controllers.DesbloquearLogro)
	router.POST("/comunidad/puntos", controllers.SumarPuntos)
}
