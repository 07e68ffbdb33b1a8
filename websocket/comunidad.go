package websocket

import (
	"log"
	"net/http"
	"sync"

	"vmagma/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var comunidadUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ComunidadClient represents a client connected for community updates
type ComunidadClient struct {
	Conn    *websocket.Conn
	UserID  string
	writeMu sync.Mutex
}

// SafeWriteJSON safely writes JSON data to the community client's WebSocket connection
func (cc *ComunidadClient) SafeWriteJSON(v interface{}) error {
	cc.writeMu.Lock()
	defer cc.writeMu.Unlock()
	return cc.Conn.WriteJSON(v)
}

// Global community hub for broadcasting events to all connected clients
var (
	comunidadClients = make(map[*ComunidadClient]bool)
	comunidadMutex   sync.RWMutex
)

// RegisterComunidadClient registers a client for community updates
func RegisterComunidadClient(client *ComunidadClient) {
	comunidadMutex.Lock()
	defer comunidadMutex.Unlock()
	comunidadClients[client] = true
	log.Printf("Comunidad client registered. Total clients: %d", len(comunidadClients))
}

// UnregisterComunidadClient removes a client from community updates
func UnregisterComunidadClient(client *ComunidadClient) {
	comunidadMutex.Lock()
	defer comunidadMutex.Unlock()
	delete(comunidadClients, client)
	client.Conn.Close()
	log.Printf("Comunidad client unregistered. Total clients: %d", len(comunidadClients))
}

// BroadcastEventoComunidad broadcasts a community event to all connected clients
func BroadcastEventoComunidad(evento models.EventoComunidad) {
	comunidadMutex.RLock()
	defer comunidadMutex.RUnlock()

	message := map[string]interface{}{
		"tipo":      evento.Tipo,
		"usuarioId": evento.UsuarioID,
		"timestamp": evento.Timestamp,
	}

	if evento.LogroID != "" {
		message["logroId"] = evento.LogroID
	}
	if evento.Puntos != 0 {
		message["puntos"] = evento.Puntos
	}

	for client := range comunidadClients {
		if err := client.SafeWriteJSON(message); err != nil {
			log.Printf("Error broadcasting comunidad event to client: %v", err)
			go UnregisterComunidadClient(client)
		}
	}

	log.Printf("Broadcasted comunidad event: %s to %d clients", evento.Tipo, len(comunidadClients))
}

// GetComunidadClientsCount returns the number of connected community clients
func GetComunidadClientsCount() int {
	comunidadMutex.RLock()
	defer comunidadMutex.RUnlock()
	return len(comunidadClients)
}

// ComunidadWebSocketHandler upgrades the connection and keeps it registered
// until the client goes away. Outbound traffic only; inbound frames are read
// and discarded to service control messages.
func ComunidadWebSocketHandler(c *gin.Context) {
	conn, err := comunidadUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade comunidad connection: %v", err)
		return
	}

	client := &ComunidadClient{
		Conn:   conn,
		UserID: c.Query("userId"),
	}
	RegisterComunidadClient(client)
	defer UnregisterComunidadClient(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
