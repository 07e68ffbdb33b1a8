package models

import (
	"vmagma/db"
)

// Usuario defines a player account. LogrosExpandidos is a read-time projection
// of Logros and is never written back to the store.
type Usuario struct {
	ID                string      `bson:"_id,omitempty" json:"id,omitempty"`
	Nombre            string      `bson:"nombre" json:"nombre"`
	Apellidos         string      `bson:"apellidos,omitempty" json:"apellidos,omitempty"`
	Username          string      `bson:"username,omitempty" json:"username,omitempty"`
	Foto              string      `bson:"foto,omitempty" json:"foto,omitempty"`
	Avatar            string      `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Puntos            int         `bson:"puntos" json:"puntos"`
	LogrosCompletados int         `bson:"logrosCompletados" json:"logrosCompletados"`
	Logros            []db.DocRef `bson:"logros,omitempty" json:"logros,omitempty"`
	LogrosExpandidos  []Logro     `bson:"-" json:"logrosExpandidos"`
}

// DefaultAvatarPath is shown when a user has neither foto nor avatar set.
const DefaultAvatarPath = "assets/default-avatar.png"

// NombreCompleto returns "nombre apellidos", or just nombre when there is no surname.
func (u *Usuario) NombreCompleto() string {
	if u.Apellidos != "" {
		return u.Nombre + " " + u.Apellidos
	}
	return u.Nombre
}

// AvatarURL resolves the display avatar: foto wins over avatar, with a
// packaged default as the last resort.
func (u *Usuario) AvatarURL() string {
	if u.Foto != "" {
		return u.Foto
	}
	if u.Avatar != "" {
		return u.Avatar
	}
	return DefaultAvatarPath
}
