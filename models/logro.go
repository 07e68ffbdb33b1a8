package models

// Logro is an immutable achievement catalog entry. The catalog is managed
// outside this service; we only ever read it.
type Logro struct {
	ID          string `bson:"_id,omitempty" json:"id,omitempty"`
	Titulo      string `bson:"titulo" json:"titulo"`
	Descripcion string `bson:"descripcion" json:"descripcion"`
	Icono       string `bson:"icono" json:"icono"`
	Categoria   string `bson:"categoria" json:"categoria"`
	Puntos      int    `bson:"puntos" json:"puntos"`
}
