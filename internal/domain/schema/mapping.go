// Package schema models the resolved correspondence between logical document
// concepts and the physical field names of a schema-uncertain index.
package schema

// Field is a logical document concept.
type Field string

// Logical fields the resolver discovers.
const (
	FieldAuthor       Field = "author"
	FieldContentType  Field = "contentType"
	FieldExtension    Field = "extension"
	FieldTitle        Field = "title"
	FieldLastModified Field = "lastModified"
	FieldSize         Field = "size"
	FieldIdentifier   Field = "identifier"
)

// Fields lists every logical field in a stable order.
func Fields() []Field {
	return []Field{
		FieldAuthor,
		FieldContentType,
		FieldExtension,
		FieldTitle,
		FieldLastModified,
		FieldSize,
		FieldIdentifier,
	}
}

// Mapping is an immutable logical-to-physical field mapping. Absent entries
// mean the concept could not be discovered; callers must treat those as
// "unavailable", never guess a physical name.
type Mapping struct {
	fields map[Field]string
}

// NewMapping creates a Mapping, dropping empty physical names.
func NewMapping(fields map[Field]string) Mapping {
	if len(fields) == 0 {
		return Mapping{}
	}
	c := make(map[Field]string, len(fields))
	for k, v := range fields {
		if v != "" {
			c[k] = v
		}
	}
	return Mapping{fields: c}
}

// Resolve returns the physical field name for a logical field.
func (m Mapping) Resolve(f Field) (string, bool) {
	name, ok := m.fields[f]
	return name, ok
}

// Has reports whether the logical field was discovered.
func (m Mapping) Has(f Field) bool {
	_, ok := m.fields[f]
	return ok
}

// IsEmpty reports whether nothing was discovered.
func (m Mapping) IsEmpty() bool { return len(m.fields) == 0 }

// Len returns the number of resolved fields.
func (m Mapping) Len() int { return len(m.fields) }
