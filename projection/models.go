package projection

import "github.com/susom/smartdata-worker/formatter"

// FieldMap declares which SmartData element receives the concatenated values of one or more source fields
type FieldMap struct {
	Target  string   `json:"target" bson:"target"`
	Sources []string `json:"sources" bson:"sources"`
}

type FieldMetadata struct {
	Name    string
	Label   string
	Type    formatter.FieldType
	Choices string
}

// MetadataLookup resolves the metadata of a source field
type MetadataLookup interface {
	Lookup(field string) (FieldMetadata, bool)
}

// Dictionary is the metadata of all fields of a project keyed by field name
type Dictionary map[string]FieldMetadata

func (d Dictionary) Lookup(field string) (FieldMetadata, bool) {
	metadata, ok := d[field]
	return metadata, ok
}

type Record struct {
	Id     string
	Values map[string]formatter.RawValue
}

// Value returns the raw value of a field. Absent fields are empty scalars.
func (r Record) Value(field string) formatter.RawValue {
	if r.Values == nil {
		return formatter.Scalar("")
	}
	value, ok := r.Values[field]
	if !ok {
		return formatter.Scalar("")
	}
	return value
}
