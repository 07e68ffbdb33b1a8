package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vmagma/services"
)

// GetGameURL builds a deep link into the game for the given action. Every
// remaining query parameter is forwarded into the link, percent-encoded.
func GetGameURL(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if key == "action" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          gameLauncher.BuildGameURL(action, params),
		"playStoreUrl": services.PlayStoreURL,
		"appStoreUrl":  services.AppStoreURL,
	})
}

// GetGameInstalled reports whether the game responds on this runtime.
func GetGameInstalled(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"installed": gameLauncher.IsGameInstalled(c)})
}
