package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompileUpdateSortsOperands(t *testing.T) {
	ref := DocRef{Collection: "logros", ID: "l1"}
	update := CompileUpdate(map[string]interface{}{
		"logros":            ArrayUnion(ref),
		"logrosCompletados": Increment(1),
		"puntos":            Increment(50),
		"nombre":            "Ana",
	})

	addToSet, ok := update["$addToSet"].(bson.M)
	require.True(t, ok, "expected $addToSet operator")
	assert.Equal(t, ref, addToSet["logros"])

	inc, ok := update["$inc"].(bson.M)
	require.True(t, ok, "expected $inc operator")
	assert.Equal(t, 1, inc["logrosCompletados"])
	assert.Equal(t, 50, inc["puntos"])

	set, ok := update["$set"].(bson.M)
	require.True(t, ok, "expected $set operator")
	assert.Equal(t, "Ana", set["nombre"])
}

func TestCompileUpdateArrayUnionMultipleValues(t *testing.T) {
	update := CompileUpdate(map[string]interface{}{
		"logros": ArrayUnion("a", "b"),
	})

	addToSet := update["$addToSet"].(bson.M)
	assert.Equal(t, bson.M{"$each": []interface{}{"a", "b"}}, addToSet["logros"])
}

func TestCompileUpdateOmitsEmptyOperators(t *testing.T) {
	update := CompileUpdate(map[string]interface{}{"foto": "x.png"})

	assert.NotContains(t, update, "$addToSet")
	assert.NotContains(t, update, "$inc")
	assert.Equal(t, bson.M{"foto": "x.png"}, update["$set"])
}

func TestIsRef(t *testing.T) {
	refDoc, err := bson.Marshal(DocRef{Collection: "usuario", ID: "u1"})
	require.NoError(t, err)
	assert.True(t, IsRef(refDoc))

	inline, err := bson.Marshal(bson.M{"titulo": "Primer logro", "puntos": 10})
	require.NoError(t, err)
	assert.False(t, IsRef(inline))
}

func TestSnapshotDecode(t *testing.T) {
	snap := Snapshot{
		Exists: true,
		ID:     "u1",
		Data:   bson.M{"_id": "u1", "nombre": "Ana", "puntos": 100},
	}

	var out struct {
		ID     string `bson:"_id"`
		Nombre string `bson:"nombre"`
		Puntos int    `bson:"puntos"`
	}
	require.NoError(t, snap.Decode(&out))
	assert.Equal(t, "u1", out.ID)
	assert.Equal(t, "Ana", out.Nombre)
	assert.Equal(t, 100, out.Puntos)

	missing := Snapshot{Exists: false, ID: "u2"}
	assert.Error(t, missing.Decode(&out))
}
