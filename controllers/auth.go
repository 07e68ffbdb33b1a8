package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vmagma/structs"
)

// Registro creates the credential and the matching user document.
func Registro(ctx *gin.Context) {
	var request structs.RegistroRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	usuario, err := authService.Registrar(ctx, request.Email, request.Password, request.Nombre, request.Apellidos, request.Username)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to sign up", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Registro exitoso", "usuario": usuario})
}

// Login verifies the credential and returns the user with an access token.
func Login(ctx *gin.Context) {
	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	usuario, token, err := authService.Autenticar(ctx, request.Email, request.Password)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to sign in", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Inicio de sesión exitoso", "usuario": usuario, "accessToken": token})
}

// Logout revokes the credential and clears the session.
func Logout(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := authService.CerrarSesion(ctx, token); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

// VerifyToken checks an access token against the identity provider.
func VerifyToken(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if _, _, err := authService.ValidarToken(ctx, token); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Token is valid"})
}

func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
