package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edutrack-app/edutrack-bff/internal/models"
)

// FieldType enumerates the value types a record field may carry.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeDate   FieldType = "date"
	TypeEnum   FieldType = "enum"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

// Field describes one entity field: its type, validation rules and whether
// the search pass covers it.
type Field struct {
	Name       string
	Label      string
	Type       FieldType
	Required   bool
	Searchable bool
	Enum       []string
	Email      bool
	NotFuture  bool
	NonNeg     bool
}

// Schema is the full descriptor for one entity type. The two dashboard
// entities (students, departments) are instances of this shape.
type Schema struct {
	Name             string
	Collection       string
	Fields           []Field
	Filters          []string
	DefaultSortField string
}

var validate = validator.New()

// Field returns the descriptor for the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SearchFields lists the fields covered by the free-text search pass.
func (s Schema) SearchFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// Filterable reports whether the named field accepts an exact-match filter.
func (s Schema) Filterable(name string) bool {
	for _, f := range s.Filters {
		if f == name {
			return true
		}
	}
	return false
}

// NewDraft returns an all-default record without an identifier. Drafts exist
// only inside an open form and never enter the store.
func (s Schema) NewDraft() models.Record {
	draft := make(models.Record, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Type {
		case TypeInt:
			draft[f.Name] = 0
		default:
			draft[f.Name] = ""
		}
	}
	return draft
}

// Coerce converts a raw form value into the field's typed representation.
// Numeric fields parse strings, with the empty string coercing to zero.
func (s Schema) Coerce(name string, raw interface{}) (interface{}, error) {
	field, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	switch field.Type {
	case TypeInt:
		switch v := raw.(type) {
		case nil:
			return 0, nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", field.Label)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("%s must be a number", field.Label)
		}
	default:
		switch v := raw.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		default:
			return fmt.Sprintf("%v", raw), nil
		}
	}
}

// Validate runs the field-level checks and returns a field → message mapping.
// An empty result means the record may be submitted.
func (s Schema) Validate(rec models.Record) map[string]string {
	errs := make(map[string]string)
	for _, f := range s.Fields {
		switch f.Type {
		case TypeInt:
			if f.NonNeg && rec.Int(f.Name) < 0 {
				errs[f.Name] = fmt.Sprintf("%s cannot be negative", f.Label)
			}
		default:
			value := strings.TrimSpace(rec.String(f.Name))
			if f.Required && value == "" {
				errs[f.Name] = fmt.Sprintf("%s is required", f.Label)
				continue
			}
			if value == "" {
				continue
			}
			if f.Email {
				if err := validate.Var(value, "email"); err != nil {
					errs[f.Name] = "Please enter a valid email"
				}
			}
			if len(f.Enum) > 0 && !contains(f.Enum, value) {
				errs[f.Name] = fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Enum, ", "))
			}
			if f.Type == TypeDate {
				parsed, err := time.Parse(DateLayout, value)
				if err != nil {
					errs[f.Name] = fmt.Sprintf("%s must be a valid date", f.Label)
				} else if f.NotFuture && parsed.After(time.Now()) {
					errs[f.Name] = fmt.Sprintf("%s cannot be in the future", f.Label)
				}
			}
		}
	}
	return errs
}

// FromWire maps an arbitrary server payload into a record with the schema's
// exhaustive field list, defaulting anything absent or mistyped.
func (s Schema) FromWire(raw map[string]interface{}) models.Record {
	rec := s.NewDraft()
	if raw == nil {
		return rec
	}
	if id := models.Record(raw).ID(); id != 0 {
		rec[models.IDField] = id
	}
	for _, f := range s.Fields {
		value, ok := raw[f.Name]
		if !ok || value == nil {
			continue
		}
		coerced, err := s.Coerce(f.Name, value)
		if err != nil {
			continue
		}
		rec[f.Name] = coerced
	}
	return rec
}

// ToWire extracts the schema's fields from a record for submission, dropping
// anything the collection does not define.
func (s Schema) ToWire(rec models.Record) map[string]interface{} {
	out := make(map[string]interface{}, len(s.Fields)+1)
	for _, f := range s.Fields {
		out[f.Name] = rec[f.Name]
	}
	if rec.Persisted() {
		out[models.IDField] = rec.ID()
	}
	return out
}

// Less orders two records by the given field: numeric for int fields, by
// parsed date for date fields, case-insensitive lexicographic otherwise.
func (s Schema) Less(a, b models.Record, field string) bool {
	f, ok := s.Field(field)
	if !ok {
		return false
	}
	switch f.Type {
	case TypeInt:
		return a.Int(field) < b.Int(field)
	case TypeDate:
		ta, errA := time.Parse(DateLayout, a.String(field))
		tb, errB := time.Parse(DateLayout, b.String(field))
		if errA == nil && errB == nil {
			return ta.Before(tb)
		}
		return strings.ToLower(a.String(field)) < strings.ToLower(b.String(field))
	default:
		return strings.ToLower(a.String(field)) < strings.ToLower(b.String(field))
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
