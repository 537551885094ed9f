package domain

import "fmt"

// OutputOnlyKeys are attributes the remote service attaches to a registered
// task definition. They are rejected when sent back on registration, so the
// loader strips them wherever they appear in the document.
var OutputOnlyKeys = []string{
	"taskDefinitionArn",
	"revision",
	"status",
	"requiresAttributes",
	"compatibilities",
	"registeredAt",
	"registeredBy",
	"deregisteredAt",
}

// CleanDocument returns a pruned copy of a decoded definition document.
// Null values, empty strings, empty collections and mappings whose values
// are transitively empty are removed, along with the output-only keys.
// The input tree is never mutated. CleanDocument is idempotent.
func CleanDocument(doc interface{}) interface{} {
	cleaned, ok := pruneValue(doc)
	if !ok {
		return map[string]interface{}{}
	}
	return cleaned
}

// pruneValue walks the tagged variant tree (nil | scalar | sequence |
// mapping) and reports whether the pruned value is worth keeping.
func pruneValue(v interface{}) (interface{}, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return t, t != ""
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			if cleaned, ok := pruneValue(item); ok {
				out = append(out, cleaned)
			}
		}
		return out, len(out) > 0
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			key := fmt.Sprint(k)
			if isOutputOnlyKey(key) {
				continue
			}
			if cleaned, ok := pruneValue(item); ok {
				out[key] = cleaned
			}
		}
		return out, len(out) > 0
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for key, item := range t {
			if isOutputOnlyKey(key) {
				continue
			}
			if cleaned, ok := pruneValue(item); ok {
				out[key] = cleaned
			}
		}
		return out, len(out) > 0
	default:
		// Scalars other than strings (numbers, booleans, timestamps) are
		// kept as-is; zero and false are meaningful values.
		return t, true
	}
}

func isOutputOnlyKey(key string) bool {
	for _, k := range OutputOnlyKeys {
		if key == k {
			return true
		}
	}
	return false
}
