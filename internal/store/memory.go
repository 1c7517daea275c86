package store

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDatabase is an in-process Database used by tests and the
// memory store driver. It supports the filter shapes this service
// actually issues: top-level equality (including null-or-absent
// semantics for nil values) and $set updates.
type MemoryDatabase struct {
	mu   sync.Mutex
	cols map[string]*memoryCollection
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{cols: map[string]*memoryCollection{}}
}

func (d *MemoryDatabase) Collection(name string) Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	col, ok := d.cols[name]
	if !ok {
		col = &memoryCollection{}
		d.cols[name] = col
	}
	return col
}

type memoryCollection struct {
	mu   sync.RWMutex
	docs []bson.M
}

// toDoc round-trips a value through bson so stored documents carry the very
// same wire types (ObjectID, DateTime) a real server would hand back.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matches(doc bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, present := doc[k]
		if want == nil {
			// Mongo's {field: null} matches both null and missing fields.
			if present && got != nil {
				return false
			}
			continue
		}
		if !present || !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if oa, ok := a.(primitive.ObjectID); ok {
		if ob, ok := b.(primitive.ObjectID); ok {
			return oa == ob
		}
		if pb, ok := b.(*primitive.ObjectID); ok {
			return pb != nil && oa == *pb
		}
		return false
	}
	if pa, ok := a.(*primitive.ObjectID); ok {
		return pa != nil && valueEqual(*pa, b)
	}
	if pb, ok := b.(*primitive.ObjectID); ok {
		return pb != nil && valueEqual(a, *pb)
	}
	return reflect.DeepEqual(a, b)
}

func (c *memoryCollection) FindOne(_ context.Context, filter bson.M, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			raw, err := bson.Marshal(doc)
			if err != nil {
				return err
			}
			return bson.Unmarshal(raw, out)
		}
	}
	return ErrNoDocuments
}

func (c *memoryCollection) Find(_ context.Context, filter bson.M) ([]bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]bson.M, 0)
	for _, doc := range c.docs {
		if matches(doc, filter) {
			copied, err := toDoc(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

func (c *memoryCollection) InsertOne(_ context.Context, v any) (primitive.ObjectID, error) {
	doc, err := toDoc(v)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := doc["_id"].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		oid = primitive.NewObjectID()
		doc["_id"] = oid
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, doc)
	return oid, nil
}

func (c *memoryCollection) ReplaceOne(_ context.Context, filter bson.M, v any) (int64, error) {
	repl, err := toDoc(v)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if matches(doc, filter) {
			// Replacement keeps the existing internal id.
			if id, ok := doc["_id"]; ok {
				repl["_id"] = id
			}
			c.docs[i] = repl
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, filter bson.M, update bson.M) (int64, error) {
	set, _ := update["$set"].(bson.M)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			setDoc, err := toDoc(set)
			if err != nil {
				return 0, err
			}
			for k, v := range setDoc {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if matches(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) Count(_ context.Context, filter bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}
