package models

// Event type tags.
const (
	EventoDesafio     = "Desafío"
	EventoTorneo      = "Torneo"
	EventoCooperativo = "Cooperativo"
)

// Evento is a community event listing. Read-only from this service.
type Evento struct {
	ID            string `bson:"_id,omitempty" json:"id,omitempty"`
	Nombre        string `bson:"nombre" json:"nombre"`
	Tipo          string `bson:"tipo" json:"tipo"`
	Descripcion   string `bson:"descripcion" json:"descripcion"`
	Fecha         string `bson:"fecha" json:"fecha"`
	Recompensa    string `bson:"recompensa" json:"recompensa"`
	Participantes int    `bson:"participantes" json:"participantes"`
	Icono         string `bson:"icono" json:"icono"`
}
