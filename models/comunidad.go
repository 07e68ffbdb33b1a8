package models

import "time"

// ResultadoDesbloqueo is the structured outcome of an unlock attempt. Failures
// travel through Mensaje, never through an error.
type ResultadoDesbloqueo struct {
	Success bool   `json:"success"`
	Mensaje string `json:"mensaje"`
	Puntos  *int   `json:"puntos,omitempty"`
}

// EventoComunidad is pushed to websocket subscribers when the community state
// changes.
type EventoComunidad struct {
	Tipo      string    `json:"tipo"`
	UsuarioID string    `json:"usuarioId"`
	LogroID   string    `json:"logroId,omitempty"`
	Puntos    int       `json:"puntos,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
