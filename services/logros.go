package services

import (
	"context"
	"log"

	"vmagma/db"
	"vmagma/models"
)

// Store collections.
const (
	colUsuario   = "usuario"
	colLogros    = "logros"
	colActividad = "actividadReciente"
	colEventos   = "eventos"
)

// LogrosService reads the achievement catalog.
type LogrosService struct {
	store db.Store
}

func NewLogrosService(store db.Store) *LogrosService {
	return &LogrosService{store: store}
}

// GetLogros returns the full catalog.
func (s *LogrosService) GetLogros(ctx context.Context) ([]models.Logro, error) {
	snaps, err := s.store.CollectionData(ctx, colLogros)
	if err != nil {
		return nil, err
	}
	logros := make([]models.Logro, 0, len(snaps))
	for _, snap := range snaps {
		var logro models.Logro
		if err := snap.Decode(&logro); err != nil {
			log.Printf("Error al decodificar logro %s: %v", snap.ID, err)
			continue
		}
		if logro.ID == "" {
			logro.ID = snap.ID
		}
		logros = append(logros, logro)
	}
	return logros, nil
}

// GetLogro returns a catalog entry by id, or nil when it does not exist.
// A failed read also yields nil (logged); callers cannot tell the two apart.
func (s *LogrosService) GetLogro(ctx context.Context, id string) *models.Logro {
	snap, err := s.store.GetDoc(ctx, s.store.Doc(colLogros, id))
	if err != nil {
		log.Printf("Error al obtener logro %s: %v", id, err)
		return nil
	}
	if !snap.Exists {
		return nil
	}
	var logro models.Logro
	if err := snap.Decode(&logro); err != nil {
		log.Printf("Error al decodificar logro %s: %v", id, err)
		return nil
	}
	if logro.ID == "" {
		logro.ID = snap.ID
	}
	return &logro
}
