package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"vmagma/db"
)

// Activity type tags.
const (
	ActividadLogro  = "logro"
	ActividadNivel  = "nivel"
	ActividadEvento = "evento"
	ActividadSocial = "social"
)

// JugadorCampo is the jugador field of an activity: either an inline display
// name or an unresolved reference to a usuario document. Exactly one variant
// is set.
type JugadorCampo struct {
	Nombre string
	Ref    *db.DocRef
}

// JugadorNombre builds the inline-name variant.
func JugadorNombre(nombre string) JugadorCampo {
	return JugadorCampo{Nombre: nombre}
}

// JugadorRef builds the reference variant.
func JugadorRef(ref db.DocRef) JugadorCampo {
	return JugadorCampo{Ref: &ref}
}

func (j JugadorCampo) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if j.Ref != nil {
		return bson.MarshalValue(*j.Ref)
	}
	return bson.MarshalValue(j.Nombre)
}

func (j *JugadorCampo) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeString:
		var nombre string
		if err := bson.UnmarshalValue(t, data, &nombre); err != nil {
			return err
		}
		j.Nombre, j.Ref = nombre, nil
		return nil
	case bson.TypeEmbeddedDocument:
		var ref db.DocRef
		if err := bson.UnmarshalValue(t, data, &ref); err != nil {
			return err
		}
		j.Ref, j.Nombre = &ref, ""
		return nil
	}
	return fmt.Errorf("unexpected jugador field type %s", t)
}

func (j JugadorCampo) MarshalJSON() ([]byte, error) {
	if j.Ref != nil {
		return json.Marshal(j.Ref)
	}
	return json.Marshal(j.Nombre)
}

// LogroCampo is the logro field of an activity: an unresolved reference, or an
// achievement already embedded inline by whoever seeded the record.
type LogroCampo struct {
	Ref    *db.DocRef
	Inline *Logro
}

// LogroRef builds the reference variant.
func LogroRef(ref db.DocRef) *LogroCampo {
	return &LogroCampo{Ref: &ref}
}

// LogroInline builds the inline variant.
func LogroInline(logro Logro) *LogroCampo {
	return &LogroCampo{Inline: &logro}
}

func (l LogroCampo) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if l.Ref != nil {
		return bson.MarshalValue(*l.Ref)
	}
	if l.Inline != nil {
		return bson.MarshalValue(*l.Inline)
	}
	return bson.MarshalValue(bson.M{})
}

func (l *LogroCampo) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bson.TypeEmbeddedDocument {
		return fmt.Errorf("unexpected logro field type %s", t)
	}
	// The reference shape is what distinguishes the two variants.
	if db.IsRef(bson.Raw(data)) {
		var ref db.DocRef
		if err := bson.UnmarshalValue(t, data, &ref); err != nil {
			return err
		}
		l.Ref, l.Inline = &ref, nil
		return nil
	}
	var logro Logro
	if err := bson.UnmarshalValue(t, data, &logro); err != nil {
		return err
	}
	l.Inline, l.Ref = &logro, nil
	return nil
}

func (l LogroCampo) MarshalJSON() ([]byte, error) {
	if l.Ref != nil {
		return json.Marshal(l.Ref)
	}
	return json.Marshal(l.Inline)
}

// Actividad is a community feed record. JugadorExpandido is populated only by
// feed expansion and never persisted.
type Actividad struct {
	ID               string       `bson:"_id,omitempty" json:"id,omitempty"`
	Jugador          JugadorCampo `bson:"jugador" json:"jugador"`
	Avatar           string       `bson:"avatar" json:"avatar"`
	Tipo             string       `bson:"tipo" json:"tipo"`
	Descripcion      string       `bson:"descripcion" json:"descripcion"`
	Tiempo           string       `bson:"tiempo" json:"tiempo"`
	Logro            *LogroCampo  `bson:"logro,omitempty" json:"logro,omitempty"`
	Fecha            string       `bson:"fecha,omitempty" json:"fecha,omitempty"`
	JugadorExpandido *Usuario     `bson:"-" json:"jugadorExpandido,omitempty"`
}
