package types

const IDKey = "id"

// Record is a single settings entry: an open-ended JSON object. The store
// only interprets the "id" field, which identifies the record within its
// file; everything else is opaque caller data.
type Record map[string]interface{}

// ID returns the record's identifier, or the empty string when the field is
// absent or not a string.
func (r Record) ID() string {
	id, _ := r[IDKey].(string)
	return id
}

// WithID returns the record with its identifier set to id.
func (r Record) WithID(id string) Record {
	r[IDKey] = id
	return r
}
