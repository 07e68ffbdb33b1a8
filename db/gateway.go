package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocRef identifies a document by collection and id without carrying its data.
// Resolving a ref is always an explicit GetDoc call.
type DocRef struct {
	Collection string `bson:"coleccion" json:"coleccion"`
	ID         string `bson:"id" json:"id"`
}

// IsRef reports whether a decoded BSON document has the shape of a DocRef.
func IsRef(raw bson.Raw) bool {
	col, err := raw.LookupErr("coleccion")
	if err != nil {
		return false
	}
	id, err := raw.LookupErr("id")
	if err != nil {
		return false
	}
	return col.Type == bson.TypeString && id.Type == bson.TypeString
}

// Snapshot is the result of reading a single document. A missing document is
// Exists=false with a nil error; only store failures surface as errors.
type Snapshot struct {
	Exists bool
	ID     string
	Data   bson.M
}

// Decode unmarshals the snapshot data into v, with the document id available
// under the "_id" field.
func (s Snapshot) Decode(v interface{}) error {
	if !s.Exists {
		return fmt.Errorf("document %s does not exist", s.ID)
	}
	raw, err := bson.Marshal(s.Data)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

// ArrayUnionOp appends values to a list field only if not already present.
type ArrayUnionOp struct {
	Values []interface{}
}

// IncrementOp adds a signed delta to a numeric field.
type IncrementOp struct {
	Delta int
}

// ArrayUnion builds an array-union update operand.
func ArrayUnion(values ...interface{}) ArrayUnionOp {
	return ArrayUnionOp{Values: values}
}

// Increment builds an increment update operand.
func Increment(delta int) IncrementOp {
	return IncrementOp{Delta: delta}
}

// Store is the document store gateway. All operations are context-bound and
// may fail with the store's own error; the gateway never retries.
type Store interface {
	Doc(collection, id string) DocRef
	GetDoc(ctx context.Context, ref DocRef) (Snapshot, error)
	CollectionData(ctx context.Context, collection string) ([]Snapshot, error)
	UpdateDoc(ctx context.Context, ref DocRef, fields map[string]interface{}) error
	SetDoc(ctx context.Context, ref DocRef, fields interface{}) error
	AddDoc(ctx context.Context, collection string, fields interface{}) (DocRef, error)
}

// MongoStore implements Store on top of a Mongo database.
type MongoStore struct {
	database *mongo.Database
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{database: database}
}

func (s *MongoStore) Doc(collection, id string) DocRef {
	return DocRef{Collection: collection, ID: id}
}

func (s *MongoStore) GetDoc(ctx context.Context, ref DocRef) (Snapshot, error) {
	var data bson.M
	err := s.database.Collection(ref.Collection).FindOne(ctx, bson.M{"_id": ref.ID}).Decode(&data)
	if err == mongo.ErrNoDocuments {
		return Snapshot{Exists: false, ID: ref.ID}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read %s/%s: %w", ref.Collection, ref.ID, err)
	}
	return Snapshot{Exists: true, ID: ref.ID, Data: data}, nil
}

func (s *MongoStore) CollectionData(ctx context.Context, collection string) ([]Snapshot, error) {
	cursor, err := s.database.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var snapshots []Snapshot
	for cursor.Next(ctx) {
		var data bson.M
		if err := cursor.Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to decode document in %s: %w", collection, err)
		}
		id, _ := data["_id"].(string)
		snapshots = append(snapshots, Snapshot{Exists: true, ID: id, Data: data})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", collection, err)
	}
	return snapshots, nil
}

func (s *MongoStore) UpdateDoc(ctx context.Context, ref DocRef, fields map[string]interface{}) error {
	update := CompileUpdate(fields)
	_, err := s.database.Collection(ref.Collection).UpdateOne(ctx, bson.M{"_id": ref.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", ref.Collection, ref.ID, err)
	}
	return nil
}

func (s *MongoStore) SetDoc(ctx context.Context, ref DocRef, fields interface{}) error {
	doc, err := toDocument(fields)
	if err != nil {
		return err
	}
	doc["_id"] = ref.ID
	opts := options.Replace().SetUpsert(true)
	if _, err := s.database.Collection(ref.Collection).ReplaceOne(ctx, bson.M{"_id": ref.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", ref.Collection, ref.ID, err)
	}
	return nil
}

func (s *MongoStore) AddDoc(ctx context.Context, collection string, fields interface{}) (DocRef, error) {
	id := primitive.NewObjectID().Hex()
	doc, err := toDocument(fields)
	if err != nil {
		return DocRef{}, err
	}
	doc["_id"] = id
	if _, err := s.database.Collection(collection).InsertOne(ctx, doc); err != nil {
		return DocRef{}, fmt.Errorf("failed to add document to %s: %w", collection, err)
	}
	return DocRef{Collection: collection, ID: id}, nil
}

// CompileUpdate sorts field operands into their Mongo update operators:
// ArrayUnionOp becomes $addToSet, IncrementOp becomes $inc, everything else
// is a plain merge via $set.
func CompileUpdate(fields map[string]interface{}) bson.M {
	addToSet := bson.M{}
	inc := bson.M{}
	set := bson.M{}

	for key, value := range fields {
		switch op := value.(type) {
		case ArrayUnionOp:
			if len(op.Values) == 1 {
				addToSet[key] = op.Values[0]
			} else {
				addToSet[key] = bson.M{"$each": op.Values}
			}
		case IncrementOp:
			inc[key] = op.Delta
		default:
			set[key] = value
		}
	}

	update := bson.M{}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	return update
}

func toDocument(fields interface{}) (bson.M, error) {
	if m, ok := fields.(bson.M); ok {
		out := bson.M{}
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}
