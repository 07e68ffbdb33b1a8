package routes

import (
	"vmagma/controllers"

	"github.com/gin-gonic/gin"
)

func RegistroRouteHandler(ctx *gin.Context) {
	controllers.Registro(ctx)
}

func LoginRouteHandler(ctx *gin.Context) {
	controllers.Login(ctx)
}

func LogoutRouteHandler(ctx *gin.Context) {
	controllers.Logout(ctx)
}

func VerifyTokenRouteHandler(ctx *gin.Context) {
	controllers.VerifyToken(ctx)
}
