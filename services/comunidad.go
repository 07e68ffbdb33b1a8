package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"vmagma/db"
	"vmagma/models"
)

// Unlock result messages.
const (
	MensajeLogroNoEncontrado   = "Logro no encontrado"
	MensajeUsuarioNoEncontrado = "Usuario no encontrado"
	MensajeYaDesbloqueado      = "Logro ya desbloqueado"
	MensajeErrorDesbloqueo     = "Error al desbloquear logro"
)

// ComunidadService builds the community feeds (ranking, activity, events) and
// runs the achievement-unlock sequence.
type ComunidadService struct {
	store db.Store
}

func NewComunidadService(store db.Store) *ComunidadService {
	return &ComunidadService{store: store}
}

// GetRanking returns every user with defaults applied and achievement
// references expanded. Individual resolution failures are dropped, never
// surfaced; the ranking itself only fails if the collection read fails.
func (s *ComunidadService) GetRanking(ctx context.Context) ([]models.Usuario, error) {
	snaps, err := s.store.CollectionData(ctx, colUsuario)
	if err != nil {
		return nil, err
	}

	usuarios := make([]models.Usuario, 0, len(snaps))
	for _, snap := range snaps {
		var usuario models.Usuario
		if err := snap.Decode(&usuario); err != nil {
			log.Printf("Error al decodificar usuario %s: %v", snap.ID, err)
			continue
		}
		if usuario.ID == "" {
			usuario.ID = snap.ID
		}
		if usuario.Foto != "" {
			usuario.Avatar = usuario.Foto
		}
		usuario.LogrosExpandidos = s.expandirLogros(ctx, usuario.Logros)
		usuarios = append(usuarios, usuario)
	}
	return usuarios, nil
}

// expandirLogros resolves achievement references concurrently. Results keep
// the order of the input refs; failed or missing entries are filtered out.
func (s *ComunidadService) expandirLogros(ctx context.Context, refs []db.DocRef) []models.Logro {
	if len(refs) == 0 {
		return []models.Logro{}
	}

	resolved := make([]*models.Logro, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			snap, err := s.store.GetDoc(ctx, ref)
			if err != nil {
				log.Printf("Error al obtener logro %s: %v", ref.ID, err)
				return nil
			}
			if !snap.Exists {
				return nil
			}
			var logro models.Logro
			if err := snap.Decode(&logro); err != nil {
				log.Printf("Error al decodificar logro %s: %v", ref.ID, err)
				return nil
			}
			if logro.ID == "" {
				logro.ID = snap.ID
			}
			resolved[i] = &logro
			return nil
		})
	}
	g.Wait()

	logros := make([]models.Logro, 0, len(refs))
	for _, logro := range resolved {
		if logro != nil {
			logros = append(logros, *logro)
		}
	}
	return logros
}

// GetActividad returns the activity feed with jugador and logro references
// expanded in place. Expansion failures leave the record untouched.
func (s *ComunidadService) GetActividad(ctx context.Context) ([]models.Actividad, error) {
	snaps, err := s.store.CollectionData(ctx, colActividad)
	if err != nil {
		return nil, err
	}

	actividades := make([]models.Actividad, 0, len(snaps))
	for _, snap := range snaps {
		var actividad models.Actividad
		if err := snap.Decode(&actividad); err != nil {
			log.Printf("Error al decodificar actividad %s: %v", snap.ID, err)
			continue
		}
		if actividad.ID == "" {
			actividad.ID = snap.ID
		}
		actividades = append(actividades, actividad)
	}

	var g errgroup.Group
	for i := range actividades {
		i := i
		g.Go(func() error {
			s.expandirActividad(ctx, &actividades[i])
			return nil
		})
	}
	g.Wait()

	return actividades, nil
}

func (s *ComunidadService) expandirActividad(ctx context.Context, actividad *models.Actividad) {
	if actividad.Jugador.Ref != nil {
		snap, err := s.store.GetDoc(ctx, *actividad.Jugador.Ref)
		switch {
		case err != nil:
			log.Printf("Error expandiendo jugador: %v", err)
		case snap.Exists:
			var jugador models.Usuario
			if err := snap.Decode(&jugador); err != nil {
				log.Printf("Error expandiendo jugador: %v", err)
				break
			}
			if jugador.ID == "" {
				jugador.ID = snap.ID
			}
			actividad.JugadorExpandido = &jugador

			nombre := jugador.Nombre
			if nombre == "" {
				nombre = "Usuario"
			}
			actividad.Jugador = models.JugadorNombre(nombre)

			// Fallback order is a hard contract: foto, then avatar, then
			// whatever the activity already carried.
			if jugador.Foto != "" {
				actividad.Avatar = jugador.Foto
			} else if jugador.Avatar != "" {
				actividad.Avatar = jugador.Avatar
			}
		}
	}

	if actividad.Logro != nil && actividad.Logro.Ref != nil {
		snap, err := s.store.GetDoc(ctx, *actividad.Logro.Ref)
		switch {
		case err != nil:
			log.Printf("Error expandiendo logro: %v", err)
		case !snap.Exists:
			actividad.Logro = nil
		default:
			var logro models.Logro
			if err := snap.Decode(&logro); err != nil {
				log.Printf("Error expandiendo logro: %v", err)
				break
			}
			if logro.ID == "" {
				logro.ID = snap.ID
			}
			actividad.Logro = models.LogroInline(logro)
		}
	}
}

// GetEventos is a pass-through read of the events collection.
func (s *ComunidadService) GetEventos(ctx context.Context) ([]models.Evento, error) {
	snaps, err := s.store.CollectionData(ctx, colEventos)
	if err != nil {
		return nil, err
	}
	eventos := make([]models.Evento, 0, len(snaps))
	for _, snap := range snaps {
		var evento models.Evento
		if err := snap.Decode(&evento); err != nil {
			log.Printf("Error al decodificar evento %s: %v", snap.ID, err)
			continue
		}
		if evento.ID == "" {
			evento.ID = snap.ID
		}
		eventos = append(eventos, evento)
	}
	return eventos, nil
}

// DesbloquearLogro runs the unlock sequence: read achievement, read user,
// duplicate check, then array-union the reference and increment counters in a
// single update. The read-check-write is not transactional: two concurrent
// unlocks for the same pair can both pass the duplicate check.
func (s *ComunidadService) DesbloquearLogro(ctx context.Context, usuarioID, logroID string) models.ResultadoDesbloqueo {
	logroRef := s.store.Doc(colLogros, logroID)
	logroSnap, err := s.store.GetDoc(ctx, logroRef)
	if err != nil {
		return s.errorDesbloqueo(err)
	}
	if !logroSnap.Exists {
		return models.ResultadoDesbloqueo{Success: false, Mensaje: MensajeLogroNoEncontrado}
	}
	var logro models.Logro
	if err := logroSnap.Decode(&logro); err != nil {
		return s.errorDesbloqueo(err)
	}

	usuarioRef := s.store.Doc(colUsuario, usuarioID)
	usuarioSnap, err := s.store.GetDoc(ctx, usuarioRef)
	if err != nil {
		return s.errorDesbloqueo(err)
	}
	if !usuarioSnap.Exists {
		return models.ResultadoDesbloqueo{Success: false, Mensaje: MensajeUsuarioNoEncontrado}
	}
	var usuario models.Usuario
	if err := usuarioSnap.Decode(&usuario); err != nil {
		return s.errorDesbloqueo(err)
	}

	for _, ref := range usuario.Logros {
		if ref.ID == logroID {
			cero := 0
			return models.ResultadoDesbloqueo{Success: false, Mensaje: MensajeYaDesbloqueado, Puntos: &cero}
		}
	}

	err = s.store.UpdateDoc(ctx, usuarioRef, map[string]interface{}{
		"logros":            db.ArrayUnion(logroRef),
		"logrosCompletados": db.Increment(1),
		"puntos":            db.Increment(logro.Puntos),
	})
	if err != nil {
		return s.errorDesbloqueo(err)
	}

	s.crearActividadLogro(ctx, usuarioRef, logroRef)

	puntos := logro.Puntos
	return models.ResultadoDesbloqueo{
		Success: true,
		Mensaje: fmt.Sprintf("¡Logro desbloqueado! +%d puntos", puntos),
		Puntos:  &puntos,
	}
}

func (s *ComunidadService) errorDesbloqueo(err error) models.ResultadoDesbloqueo {
	log.Printf("Error al desbloquear logro: %v", err)
	return models.ResultadoDesbloqueo{Success: false, Mensaje: MensajeErrorDesbloqueo}
}

// crearActividadLogro records the unlock on the activity feed. The unlock is
// already committed at this point, so a failure here is logged and dropped.
func (s *ComunidadService) crearActividadLogro(ctx context.Context, usuarioRef, logroRef db.DocRef) {
	actividad := models.Actividad{
		Jugador:     models.JugadorRef(usuarioRef),
		Tipo:        models.ActividadLogro,
		Descripcion: "desbloqueó un nuevo logro",
		Tiempo:      "ahora mismo",
		Logro:       models.LogroRef(logroRef),
		Avatar:      "",
		Fecha:       time.Now().Format(time.RFC3339),
	}
	if _, err := s.store.AddDoc(ctx, colActividad, actividad); err != nil {
		log.Printf("Error al crear actividad: %v", err)
	}
}

// SumarPuntos unconditionally adds cantidad (may be negative) to a user's
// points. Failures are swallowed into false.
func (s *ComunidadService) SumarPuntos(ctx context.Context, usuarioID string, cantidad int, motivo string) bool {
	err := s.store.UpdateDoc(ctx, s.store.Doc(colUsuario, usuarioID), map[string]interface{}{
		"puntos": db.Increment(cantidad),
	})
	if err != nil {
		log.Printf("Error al sumar puntos: %v", err)
		return false
	}
	if motivo != "" {
		log.Printf("+%d puntos para %s por: %s", cantidad, usuarioID, motivo)
	}
	return true
}

// GetLogrosDisponibles returns the catalog entries the user has not unlocked
// yet. A missing user or any internal failure yields an empty list.
func (s *ComunidadService) GetLogrosDisponibles(ctx context.Context, usuarioID string) []models.Logro {
	snaps, err := s.store.CollectionData(ctx, colLogros)
	if err != nil {
		log.Printf("Error al obtener logros disponibles: %v", err)
		return []models.Logro{}
	}

	usuarioSnap, err := s.store.GetDoc(ctx, s.store.Doc(colUsuario, usuarioID))
	if err != nil {
		log.Printf("Error al obtener logros disponibles: %v", err)
		return []models.Logro{}
	}
	if !usuarioSnap.Exists {
		return []models.Logro{}
	}
	var usuario models.Usuario
	if err := usuarioSnap.Decode(&usuario); err != nil {
		log.Printf("Error al obtener logros disponibles: %v", err)
		return []models.Logro{}
	}

	desbloqueados := make(map[string]bool, len(usuario.Logros))
	for _, ref := range usuario.Logros {
		desbloqueados[ref.ID] = true
	}

	disponibles := make([]models.Logro, 0, len(snaps))
	for _, snap := range snaps {
		if desbloqueados[snap.ID] {
			continue
		}
		var logro models.Logro
		if err := snap.Decode(&logro); err != nil {
			log.Printf("Error al decodificar logro %s: %v", snap.ID, err)
			continue
		}
		if logro.ID == "" {
			logro.ID = snap.ID
		}
		disponibles = append(disponibles, logro)
	}
	return disponibles
}

// GetLogrosDesbloqueados expands the user's unlocked references. A missing
// user or any internal failure yields an empty list.
func (s *ComunidadService) GetLogrosDesbloqueados(ctx context.Context, usuarioID string) []models.Logro {
	usuarioSnap, err := s.store.GetDoc(ctx, s.store.Doc(colUsuario, usuarioID))
	if err != nil {
		log.Printf("Error al obtener logros desbloqueados: %v", err)
		return []models.Logro{}
	}
	if !usuarioSnap.Exists {
		return []models.Logro{}
	}
	var usuario models.Usuario
	if err := usuarioSnap.Decode(&usuario); err != nil {
		log.Printf("Error al obtener logros desbloqueados: %v", err)
		return []models.Logro{}
	}
	return s.expandirLogros(ctx, usuario.Logros)
}
