package models

// Record is a single entity as exchanged with the record service. Field
// values are schema-typed at the boundary (string, int or ISO date string).
// Persisted records carry a server-assigned "Id"; drafts do not.
type Record map[string]interface{}

// IDField is the server-assigned identifier key on wire records.
const IDField = "Id"

// ID returns the server-assigned identifier, or 0 for drafts.
func (r Record) ID() int {
	switch v := r[IDField].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Persisted reports whether the record has a server-assigned identifier.
func (r Record) Persisted() bool {
	return r.ID() != 0
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the named field as a string, or "" when absent or untyped.
func (r Record) String(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// Int returns the named field as an int, or 0 when absent or untyped.
func (r Record) Int(name string) int {
	switch v := r[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
