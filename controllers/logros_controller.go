package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vmagma/models"
)

// GetLogros returns the full achievement catalog.
func GetLogros(c *gin.Context) {
	logros, err := logrosService.GetLogros(c)
	if err != nil {
		log.Printf("Error al obtener logros: %v", err)
		c.JSON(http.StatusOK, gin.H{"logros": []models.Logro{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logros": logros})
}

// GetLogro returns a single catalog entry, 404 when unknown.
func GetLogro(c *gin.Context) {
	logro := logrosService.GetLogro(c, c.Param("id"))
	if logro == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logro no encontrado"})
		return
	}
	c.JSON(http.StatusOK, logro)
}
