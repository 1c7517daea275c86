package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalize converts a stored document into a wire-safe structure: internal
// "_id" fields are dropped at every level, ObjectIDs become their hex string
// form and BSON datetimes become UTC time.Time values. The input document is
// left untouched; every endpoint must pass its documents through here before
// they reach the response encoder.
func Normalize(doc bson.M) map[string]any {
	return normalizeMap(doc)
}

func normalizeMap[M ~map[string]any](m M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "_id" {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case *primitive.ObjectID:
		if t == nil {
			return nil
		}
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case bson.D:
		return normalizeMap(t.Map())
	case bson.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	case []bson.M:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalizeMap(el)
		}
		return out
	default:
		return v
	}
}

func normalizeSlice[S ~[]any](s S) []any {
	out := make([]any, len(s))
	for i, el := range s {
		out[i] = normalizeValue(el)
	}
	return out
}
