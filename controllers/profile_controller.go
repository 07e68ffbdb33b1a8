package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vmagma/db"
	"vmagma/models"
	"vmagma/structs"
)

var store db.Store

// InitStore wires the controller package to the document store gateway.
func InitStore(s db.Store) {
	store = s
}

// GetProfile retrieves the authenticated user's profile.
func GetProfile(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snap, err := store.GetDoc(ctx, store.Doc("usuario", uid))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !snap.Exists {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Usuario no encontrado"})
		return
	}

	var usuario models.Usuario
	if err := snap.Decode(&usuario); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if usuario.ID == "" {
		usuario.ID = uid
	}

	ctx.JSON(http.StatusOK, gin.H{
		"usuario":        usuario,
		"nombreCompleto": usuario.NombreCompleto(),
		"avatarUrl":      usuario.AvatarURL(),
	})
}

// UpdateProfile merge-writes the provided profile fields and re-emits the
// in-memory session when it matches.
func UpdateProfile(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request structs.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	campos := map[string]interface{}{}
	if request.Nombre != nil {
		campos["nombre"] = *request.Nombre
	}
	if request.Apellidos != nil {
		campos["apellidos"] = *request.Apellidos
	}
	if request.Username != nil {
		campos["username"] = *request.Username
	}
	if request.Foto != nil {
		campos["foto"] = *request.Foto
	}
	if request.Avatar != nil {
		campos["avatar"] = *request.Avatar
	}
	if len(campos) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := sessionManager.ActualizarUsuario(ctx, uid, campos); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Usuario actualizado"})
}
