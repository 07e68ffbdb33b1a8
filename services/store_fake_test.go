package services

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vmagma/db"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory db.Store with per-path failure injection.
type fakeStore struct {
	mu              sync.Mutex
	data            map[string]map[string]bson.M
	failGets        map[string]bool
	failCollections map[string]bool
	failUpdates     bool
	failAdds        bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data:            make(map[string]map[string]bson.M),
		failGets:        make(map[string]bool),
		failCollections: make(map[string]bool),
	}
}

func (f *fakeStore) seed(collection, id string, doc bson.M) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[collection] == nil {
		f.data[collection] = make(map[string]bson.M)
	}
	copied := bson.M{}
	for k, v := range doc {
		copied[k] = v
	}
	copied["_id"] = id
	f.data[collection][id] = copied
}

func (f *fakeStore) doc(collection, id string) bson.M {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[collection][id]
}

func (f *fakeStore) collectionSize(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data[collection])
}

func (f *fakeStore) Doc(collection, id string) db.DocRef {
	return db.DocRef{Collection: collection, ID: id}
}

func (f *fakeStore) GetDoc(_ context.Context, ref db.DocRef) (db.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGets[ref.Collection+"/"+ref.ID] {
		return db.Snapshot{}, errStoreDown
	}
	doc, ok := f.data[ref.Collection][ref.ID]
	if !ok {
		return db.Snapshot{Exists: false, ID: ref.ID}, nil
	}
	return db.Snapshot{Exists: true, ID: ref.ID, Data: doc}, nil
}

func (f *fakeStore) CollectionData(_ context.Context, collection string) ([]db.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCollections[collection] {
		return nil, errStoreDown
	}
	ids := make([]string, 0, len(f.data[collection]))
	for id := range f.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	snaps := make([]db.Snapshot, 0, len(ids))
	for _, id := range ids {
		snaps = append(snaps, db.Snapshot{Exists: true, ID: id, Data: f.data[collection][id]})
	}
	return snaps, nil
}

func (f *fakeStore) UpdateDoc(_ context.Context, ref db.DocRef, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates {
		return errStoreDown
	}
	doc, ok := f.data[ref.Collection][ref.ID]
	if !ok {
		return errStoreDown
	}
	for key, value := range fields {
		switch op := value.(type) {
		case db.ArrayUnionOp:
			existing, _ := doc[key].([]interface{})
			for _, v := range op.Values {
				if !containsValue(existing, v) {
					existing = append(existing, v)
				}
			}
			doc[key] = existing
		case db.IncrementOp:
			current, _ := doc[key].(int)
			doc[key] = current + op.Delta
		default:
			doc[key] = value
		}
	}
	return nil
}

func (f *fakeStore) SetDoc(_ context.Context, ref db.DocRef, fields interface{}) error {
	raw, err := bson.Marshal(fields)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	f.seed(ref.Collection, ref.ID, doc)
	return nil
}

func (f *fakeStore) AddDoc(_ context.Context, collection string, fields interface{}) (db.DocRef, error) {
	if f.failAdds {
		return db.DocRef{}, errStoreDown
	}
	raw, err := bson.Marshal(fields)
	if err != nil {
		return db.DocRef{}, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return db.DocRef{}, err
	}
	id := primitive.NewObjectID().Hex()
	f.seed(collection, id, doc)
	return db.DocRef{Collection: collection, ID: id}, nil
}

func containsValue(list []interface{}, value interface{}) bool {
	for _, v := range list {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}
