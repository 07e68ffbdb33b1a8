package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"vmagma/db"
	"vmagma/models"
)

// Session states.
type EstadoSesion int

const (
	NoAutenticado EstadoSesion = iota
	Resolviendo
	Autenticado
)

// SessionManager owns the process-wide current-user slot. It is the single
// writer; any number of subscribers observe transitions with replay-one
// semantics (latest state immediately, then every future transition).
type SessionManager struct {
	mu          sync.Mutex
	store       db.Store
	actual      *models.Usuario
	resolviendo bool
	subs        map[string]chan *models.Usuario
}

func NewSessionManager(store db.Store) *SessionManager {
	return &SessionManager{
		store: store,
		subs:  make(map[string]chan *models.Usuario),
	}
}

// Subscribe returns a channel that immediately carries the current state and
// then every transition. A subscriber that stops draining just misses late
// states; emissions never block. cancel unregisters the subscription.
func (m *SessionManager) Subscribe() (<-chan *models.Usuario, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *models.Usuario, 8)
	ch <- m.actual
	id := uuid.NewString()
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (m *SessionManager) emitLocked(usuario *models.Usuario) {
	m.actual = usuario
	m.resolviendo = false
	for _, ch := range m.subs {
		select {
		case ch <- usuario:
		default:
		}
	}
}

// Set replaces the current-user slot and notifies subscribers.
func (m *SessionManager) Set(usuario *models.Usuario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitLocked(usuario)
}

// Current returns the user in the slot, or nil when unauthenticated.
func (m *SessionManager) Current() *models.Usuario {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actual
}

func (m *SessionManager) IsLoggedIn() bool {
	return m.Current() != nil
}

// Estado reports the session state, including the transient resolving state
// during a session-restore.
func (m *SessionManager) Estado() EstadoSesion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolviendo {
		return Resolviendo
	}
	if m.actual != nil {
		return Autenticado
	}
	return NoAutenticado
}

// HandleSessionChange processes one session-change notification from the
// identity provider. An empty uid means signed out. A live uid triggers a
// resolve of the matching user document; a failed resolve degrades to
// unauthenticated, logged.
func (m *SessionManager) HandleSessionChange(ctx context.Context, uid string) {
	if uid == "" {
		m.Set(nil)
		return
	}

	m.mu.Lock()
	m.resolviendo = true
	m.mu.Unlock()

	snap, err := m.store.GetDoc(ctx, m.store.Doc(colUsuario, uid))
	if err != nil {
		log.Printf("Error al obtener datos del usuario %s: %v", uid, err)
		m.Set(nil)
		return
	}
	if !snap.Exists {
		log.Printf("Usuario %s no encontrado en el almacén", uid)
		m.Set(nil)
		return
	}

	var usuario models.Usuario
	if err := snap.Decode(&usuario); err != nil {
		log.Printf("Error al decodificar usuario %s: %v", uid, err)
		m.Set(nil)
		return
	}
	if usuario.ID == "" {
		usuario.ID = uid
	}
	m.Set(&usuario)
}

// Run consumes session-change notifications until the channel closes or the
// context ends. The provider may fire any number of them over the process
// lifetime.
func (m *SessionManager) Run(ctx context.Context, events <-chan string) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case uid, ok := <-events:
				if !ok {
					return
				}
				m.HandleSessionChange(ctx, uid)
			}
		}
	}()
}

// ActualizarUsuario merge-writes partial fields to the user document. Only
// when the in-memory user matches uid is the slot patched and re-emitted, so
// an edit to some other account never leaks into the local session.
func (m *SessionManager) ActualizarUsuario(ctx context.Context, uid string, campos map[string]interface{}) error {
	if err := m.store.UpdateDoc(ctx, m.store.Doc(colUsuario, uid), campos); err != nil {
		return fmt.Errorf("failed to update user %s: %w", uid, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actual != nil && m.actual.ID == uid {
		patched, err := patchUsuario(*m.actual, campos)
		if err != nil {
			log.Printf("Error al actualizar usuario en memoria: %v", err)
			return nil
		}
		m.emitLocked(patched)
	}
	return nil
}

// patchUsuario applies a partial-field map over a user the same way the
// merge-write applies it to the document.
func patchUsuario(usuario models.Usuario, campos map[string]interface{}) (*models.Usuario, error) {
	raw, err := bson.Marshal(usuario)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range campos {
		doc[k] = v
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var patched models.Usuario
	if err := bson.Unmarshal(raw, &patched); err != nil {
		return nil, err
	}
	patched.LogrosExpandidos = usuario.LogrosExpandidos
	return &patched, nil
}
