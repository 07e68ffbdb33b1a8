package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"vmagma/db"
	"vmagma/models"
)

func seedLogro(store *fakeStore, id, titulo string, puntos int) {
	store.seed(colLogros, id, bson.M{
		"titulo":      titulo,
		"descripcion": "descripción de " + titulo,
		"icono":       "icons/" + id + ".png",
		"categoria":   "general",
		"puntos":      puntos,
	})
}

func TestDesbloquearLogroFlujoCompleto(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 50)
	store.seed(colUsuario, "u1", bson.M{
		"nombre": "Ana",
		"puntos": 100,
		"logros": []interface{}{},
	})

	resultado := svc.DesbloquearLogro(ctx, "u1", "l1")
	require.True(t, resultado.Success)
	assert.Equal(t, "¡Logro desbloqueado! +50 puntos", resultado.Mensaje)
	require.NotNil(t, resultado.Puntos)
	assert.Equal(t, 50, *resultado.Puntos)

	doc := store.doc(colUsuario, "u1")
	assert.Equal(t, 150, doc["puntos"])
	assert.Equal(t, 1, doc["logrosCompletados"])
	logros := doc["logros"].([]interface{})
	require.Len(t, logros, 1)
	assert.Equal(t, db.DocRef{Collection: colLogros, ID: "l1"}, logros[0])

	// The unlock is recorded on the activity feed.
	require.Equal(t, 1, store.collectionSize(colActividad))
	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 1)
	assert.Equal(t, models.ActividadLogro, actividades[0].Tipo)
	assert.Equal(t, "desbloqueó un nuevo logro", actividades[0].Descripcion)
	assert.Equal(t, "ahora mismo", actividades[0].Tiempo)

	// A second unlock of the same pair is rejected without further mutation.
	resultado = svc.DesbloquearLogro(ctx, "u1", "l1")
	assert.False(t, resultado.Success)
	assert.Equal(t, MensajeYaDesbloqueado, resultado.Mensaje)
	require.NotNil(t, resultado.Puntos)
	assert.Equal(t, 0, *resultado.Puntos)

	doc = store.doc(colUsuario, "u1")
	assert.Equal(t, 150, doc["puntos"])
	assert.Equal(t, 1, doc["logrosCompletados"])
	assert.Equal(t, 1, store.collectionSize(colActividad))
}

func TestDesbloquearLogroNoEncontrado(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	resultado := svc.DesbloquearLogro(ctx, "u1", "nope")
	assert.False(t, resultado.Success)
	assert.Equal(t, MensajeLogroNoEncontrado, resultado.Mensaje)
	assert.Nil(t, resultado.Puntos)

	seedLogro(store, "l1", "Primer paso", 10)
	resultado = svc.DesbloquearLogro(ctx, "nadie", "l1")
	assert.False(t, resultado.Success)
	assert.Equal(t, MensajeUsuarioNoEncontrado, resultado.Mensaje)
}

func TestDesbloquearLogroErroresGenericos(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.failGets[colLogros+"/l1"] = true
	resultado := svc.DesbloquearLogro(ctx, "u1", "l1")
	assert.False(t, resultado.Success)
	assert.Equal(t, MensajeErrorDesbloqueo, resultado.Mensaje)

	store.failGets = map[string]bool{}
	seedLogro(store, "l1", "Primer paso", 10)
	store.seed(colUsuario, "u1", bson.M{"nombre": "Ana", "logros": []interface{}{}})
	store.failUpdates = true
	resultado = svc.DesbloquearLogro(ctx, "u1", "l1")
	assert.False(t, resultado.Success)
	assert.Equal(t, MensajeErrorDesbloqueo, resultado.Mensaje)
}

func TestDesbloquearLogroActividadFallidaNoRompeElDesbloqueo(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 25)
	store.seed(colUsuario, "u1", bson.M{"nombre": "Ana", "puntos": 0, "logros": []interface{}{}})
	store.failAdds = true

	resultado := svc.DesbloquearLogro(ctx, "u1", "l1")
	require.True(t, resultado.Success)
	assert.Equal(t, 25, store.doc(colUsuario, "u1")["puntos"])
	assert.Equal(t, 0, store.collectionSize(colActividad))
}

func TestGetRankingDefaultsYExpansion(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)
	seedLogro(store, "l2", "Veterano", 100)

	// u1 has no points fields at all and no achievement list.
	store.seed(colUsuario, "u1", bson.M{"nombre": "Ana"})
	// u2 carries references, foto and avatar both set.
	store.seed(colUsuario, "u2", bson.M{
		"nombre": "Bruno",
		"foto":   "foto.png",
		"avatar": "avatar.png",
		"puntos": 110,
		"logros": []interface{}{
			db.DocRef{Collection: colLogros, ID: "l2"},
			db.DocRef{Collection: colLogros, ID: "l1"},
		},
	})

	ranking, err := svc.GetRanking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	u1 := ranking[0]
	assert.Equal(t, 0, u1.Puntos)
	assert.Equal(t, 0, u1.LogrosCompletados)
	require.NotNil(t, u1.LogrosExpandidos)
	assert.Empty(t, u1.LogrosExpandidos)

	u2 := ranking[1]
	assert.Equal(t, "foto.png", u2.Avatar)
	require.Len(t, u2.LogrosExpandidos, 2)
	// Expansion preserves the order of the reference list, not completion order.
	assert.Equal(t, "l2", u2.LogrosExpandidos[0].ID)
	assert.Equal(t, "l1", u2.LogrosExpandidos[1].ID)
}

func TestGetRankingFiltraResolucionesFallidas(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)
	store.seed(colUsuario, "u1", bson.M{
		"nombre": "Ana",
		"logros": []interface{}{
			db.DocRef{Collection: colLogros, ID: "roto"},
			db.DocRef{Collection: colLogros, ID: "l1"},
			db.DocRef{Collection: colLogros, ID: "inexistente"},
		},
	})
	store.failGets[colLogros+"/roto"] = true

	ranking, err := svc.GetRanking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	require.Len(t, ranking[0].LogrosExpandidos, 1)
	assert.Equal(t, "l1", ranking[0].LogrosExpandidos[0].ID)
}

func TestGetRankingEsIdempotente(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)
	store.seed(colUsuario, "u1", bson.M{
		"nombre": "Ana",
		"puntos": 30,
		"logros": []interface{}{db.DocRef{Collection: colLogros, ID: "l1"}},
	})

	primera, err := svc.GetRanking(ctx)
	require.NoError(t, err)
	segunda, err := svc.GetRanking(ctx)
	require.NoError(t, err)
	assert.Equal(t, primera, segunda)
}

func TestGetActividadExpandeJugador(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.seed(colUsuario, "u1", bson.M{"nombre": "Ana", "foto": "foto.png"})
	store.seed(colActividad, "a1", bson.M{
		"jugador":     db.DocRef{Collection: colUsuario, ID: "u1"},
		"tipo":        models.ActividadLogro,
		"descripcion": "desbloqueó un nuevo logro",
		"tiempo":      "ahora mismo",
		"avatar":      "",
	})

	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 1)

	act := actividades[0]
	assert.Nil(t, act.Jugador.Ref)
	assert.Equal(t, "Ana", act.Jugador.Nombre)
	assert.Equal(t, "foto.png", act.Avatar)
	require.NotNil(t, act.JugadorExpandido)
	assert.Equal(t, "u1", act.JugadorExpandido.ID)
}

func TestGetActividadNombrePorDefecto(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	// Referenced user exists but has no nombre.
	store.seed(colUsuario, "u1", bson.M{"puntos": 5})
	store.seed(colActividad, "a1", bson.M{
		"jugador": db.DocRef{Collection: colUsuario, ID: "u1"},
		"tipo":    models.ActividadSocial,
		"avatar":  "previo.png",
	})

	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 1)
	assert.Equal(t, "Usuario", actividades[0].Jugador.Nombre)
	// Neither foto nor avatar on the user: the activity keeps its own avatar.
	assert.Equal(t, "previo.png", actividades[0].Avatar)
}

func TestGetActividadCadenaDeAvatares(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.seed(colUsuario, "conFoto", bson.M{"nombre": "A", "foto": "foto.png", "avatar": "avatar.png"})
	store.seed(colUsuario, "soloAvatar", bson.M{"nombre": "B", "avatar": "avatar.png"})
	store.seed(colActividad, "a1", bson.M{
		"jugador": db.DocRef{Collection: colUsuario, ID: "conFoto"},
		"tipo":    models.ActividadNivel,
		"avatar":  "previo.png",
	})
	store.seed(colActividad, "a2", bson.M{
		"jugador": db.DocRef{Collection: colUsuario, ID: "soloAvatar"},
		"tipo":    models.ActividadNivel,
		"avatar":  "previo.png",
	})

	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 2)
	assert.Equal(t, "foto.png", actividades[0].Avatar)
	assert.Equal(t, "avatar.png", actividades[1].Avatar)
}

func TestGetActividadFalloSuaveDejaLaReferencia(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.seed(colActividad, "a1", bson.M{
		"jugador": db.DocRef{Collection: colUsuario, ID: "u1"},
		"tipo":    models.ActividadSocial,
		"avatar":  "previo.png",
	})
	store.failGets[colUsuario+"/u1"] = true

	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 1)
	require.NotNil(t, actividades[0].Jugador.Ref)
	assert.Equal(t, "u1", actividades[0].Jugador.Ref.ID)
	assert.Equal(t, "previo.png", actividades[0].Avatar)
	assert.Nil(t, actividades[0].JugadorExpandido)
}

func TestGetActividadExpandeLogro(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)
	store.seed(colActividad, "conRef", bson.M{
		"jugador": "Ana",
		"tipo":    models.ActividadLogro,
		"avatar":  "",
		"logro":   db.DocRef{Collection: colLogros, ID: "l1"},
	})
	store.seed(colActividad, "refRota", bson.M{
		"jugador": "Ana",
		"tipo":    models.ActividadLogro,
		"avatar":  "",
		"logro":   db.DocRef{Collection: colLogros, ID: "inexistente"},
	})
	store.seed(colActividad, "inline", bson.M{
		"jugador": "Ana",
		"tipo":    models.ActividadLogro,
		"avatar":  "",
		"logro":   bson.M{"titulo": "Ya embebido", "puntos": 5},
	})

	actividades, err := svc.GetActividad(ctx)
	require.NoError(t, err)
	require.Len(t, actividades, 3)

	porID := map[string]models.Actividad{}
	for _, act := range actividades {
		porID[act.ID] = act
	}

	conRef := porID["conRef"]
	require.NotNil(t, conRef.Logro)
	require.NotNil(t, conRef.Logro.Inline)
	assert.Equal(t, "Primer paso", conRef.Logro.Inline.Titulo)

	assert.Nil(t, porID["refRota"].Logro)

	inline := porID["inline"]
	require.NotNil(t, inline.Logro)
	require.NotNil(t, inline.Logro.Inline)
	assert.Equal(t, "Ya embebido", inline.Logro.Inline.Titulo)
}

func TestGetEventosEsPassthrough(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.seed(colEventos, "e1", bson.M{
		"nombre":        "Gran Torneo",
		"tipo":          models.EventoTorneo,
		"descripcion":   "torneo semanal",
		"fecha":         "2026-09-05",
		"recompensa":    "500 puntos",
		"participantes": 12,
		"icono":         "trofeo.png",
	})

	eventos, err := svc.GetEventos(ctx)
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	assert.Equal(t, "Gran Torneo", eventos[0].Nombre)
	assert.Equal(t, models.EventoTorneo, eventos[0].Tipo)
	assert.Equal(t, 12, eventos[0].Participantes)
}

func TestSumarPuntos(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	store.seed(colUsuario, "u1", bson.M{"nombre": "Ana", "puntos": 10})

	assert.True(t, svc.SumarPuntos(ctx, "u1", 15, "evento semanal"))
	assert.Equal(t, 25, store.doc(colUsuario, "u1")["puntos"])

	assert.True(t, svc.SumarPuntos(ctx, "u1", -5, ""))
	assert.Equal(t, 20, store.doc(colUsuario, "u1")["puntos"])

	store.failUpdates = true
	assert.False(t, svc.SumarPuntos(ctx, "u1", 5, ""))
}

func TestLogrosDisponiblesYDesbloqueadosParticionanElCatalogo(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)
	seedLogro(store, "l2", "Veterano", 50)
	seedLogro(store, "l3", "Leyenda", 100)
	store.seed(colUsuario, "u1", bson.M{
		"nombre": "Ana",
		"logros": []interface{}{db.DocRef{Collection: colLogros, ID: "l2"}},
	})

	disponibles := svc.GetLogrosDisponibles(ctx, "u1")
	desbloqueados := svc.GetLogrosDesbloqueados(ctx, "u1")

	ids := func(logros []models.Logro) map[string]bool {
		out := map[string]bool{}
		for _, l := range logros {
			out[l.ID] = true
		}
		return out
	}

	assert.Equal(t, map[string]bool{"l1": true, "l3": true}, ids(disponibles))
	assert.Equal(t, map[string]bool{"l2": true}, ids(desbloqueados))

	// Union covers the catalog, intersection is empty.
	union := ids(disponibles)
	for id := range ids(desbloqueados) {
		assert.False(t, union[id], "id %s is in both sets", id)
		union[id] = true
	}
	assert.Equal(t, map[string]bool{"l1": true, "l2": true, "l3": true}, union)
}

func TestLogrosDeUsuarioInexistenteSonListasVacias(t *testing.T) {
	store := newFakeStore()
	svc := NewComunidadService(store)
	ctx := context.Background()

	seedLogro(store, "l1", "Primer paso", 10)

	assert.Empty(t, svc.GetLogrosDisponibles(ctx, "nadie"))
	assert.Empty(t, svc.GetLogrosDesbloqueados(ctx, "nadie"))

	store.failGets[colUsuario+"/u1"] = true
	assert.Empty(t, svc.GetLogrosDisponibles(ctx, "u1"))
	assert.Empty(t, svc.GetLogrosDesbloqueados(ctx, "u1"))
}
