package controllers

import "vmagma/services"

var (
	authService      *services.AuthService
	sessionManager   *services.SessionManager
	comunidadService *services.ComunidadService
	logrosService    *services.LogrosService
	gameLauncher     *services.GameLauncher
)

// Init wires the controller package to its services. Called once from main.
func Init(auth *services.AuthService, sessions *services.SessionManager, comunidad *services.ComunidadService, logros *services.LogrosService, launcher *services.GameLauncher) {
	authService = auth
	sessionManager = sessions
	comunidadService = comunidad
	logrosService = logros
	gameLauncher = launcher
}
