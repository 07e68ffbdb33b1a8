package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vmagma/models"
	"vmagma/structs"
	"vmagma/websocket"
)

// GetRanking returns the user ranking with expanded achievements. Feed errors
// degrade to an empty list; the client never sees a hard failure here.
func GetRanking(c *gin.Context) {
	ranking, err := comunidadService.GetRanking(c)
	if err != nil {
		log.Printf("Error al obtener ranking: %v", err)
		c.JSON(http.StatusOK, gin.H{"ranking": []models.Usuario{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": ranking})
}

// GetActividad returns the recent activity feed with expanded references.
func GetActividad(c *gin.Context) {
	actividad, err := comunidadService.GetActividad(c)
	if err != nil {
		log.Printf("Error al obtener actividad: %v", err)
		c.JSON(http.StatusOK, gin.H{"actividadReciente": []models.Actividad{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"actividadReciente": actividad})
}

// GetEventos returns the event listings.
func GetEventos(c *gin.Context) {
	eventos, err := comunidadService.GetEventos(c)
	if err != nil {
		log.Printf("Error al obtener eventos: %v", err)
		c.JSON(http.StatusOK, gin.H{"eventos": []models.Evento{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventos": eventos})
}

// DesbloquearLogro unlocks an achievement for the authenticated user. The
// result is returned as-is; its mensaje is suitable for direct display.
func DesbloquearLogro(c *gin.Context) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request structs.DesbloquearLogroRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	resultado := comunidadService.DesbloquearLogro(c, uid, request.LogroId)
	if resultado.Success {
		puntos := 0
		if resultado.Puntos != nil {
			puntos = *resultado.Puntos
		}
		websocket.BroadcastEventoComunidad(models.EventoComunidad{
			Tipo:      "logro_desbloqueado",
			UsuarioID: uid,
			LogroID:   request.LogroId,
			Puntos:    puntos,
			Timestamp: time.Now(),
		})
	}

	c.JSON(http.StatusOK, resultado)
}

// SumarPuntos adds points to the authenticated user.
func SumarPuntos(c *gin.Context) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request structs.SumarPuntosRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	success := comunidadService.SumarPuntos(c, uid, request.Cantidad, request.Motivo)
	if success {
		websocket.BroadcastEventoComunidad(models.EventoComunidad{
			Tipo:      "puntos_sumados",
			UsuarioID: uid,
			Puntos:    request.Cantidad,
			Timestamp: time.Now(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": success})
}

// GetLogrosDisponibles returns the catalog entries the user has not unlocked.
func GetLogrosDisponibles(c *gin.Context) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logros": comunidadService.GetLogrosDisponibles(c, uid)})
}

// GetLogrosDesbloqueados returns the user's unlocked achievements, expanded.
func GetLogrosDesbloqueados(c *gin.Context) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logros": comunidadService.GetLogrosDesbloqueados(c, uid)})
}
