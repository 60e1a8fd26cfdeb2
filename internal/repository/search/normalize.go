package search

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/schema"
	"github.com/kailas-cloud/askdex/internal/index"
)

// contentPriority is the single ordered list of candidate content fields;
// the first non-empty value wins. OCR-enriched merged content outranks
// plain content, chunk and entity fields come last.
var contentPriority = []string{
	"merged_content",
	"content",
	"chunk",
	"text",
	"extracted_text",
	"entities",
}

// identifierFallbacks locate a document id when the identifier field is
// unmapped or empty.
var identifierFallbacks = []string{"id", "key", "metadata_storage_path"}

// normalize converts one raw hit into a canonical document. Missing or
// malformed fields substitute defaults, never fail.
func normalize(hit index.Hit, m schema.Mapping) document.Document {
	fields := hit.Fields

	id := identifierOf(fields, m)

	return document.Reconstruct(
		id,
		titleOf(fields, m, id),
		contentOf(fields),
		mappedOr(fields, m, schema.FieldAuthor, document.DefaultAuthor),
		mappedOr(fields, m, schema.FieldContentType, document.DefaultCategory),
		typeOf(fields, m, id),
		modifiedOf(fields, m),
		sizeOf(fields, m),
		hit.Score,
		fields,
	)
}

func identifierOf(fields map[string]any, m schema.Mapping) string {
	if field, ok := m.Resolve(schema.FieldIdentifier); ok {
		if v := stringField(fields, field); v != "" {
			return v
		}
	}
	for _, field := range identifierFallbacks {
		if v := stringField(fields, field); v != "" {
			return v
		}
	}
	return ""
}

func titleOf(fields map[string]any, m schema.Mapping, id string) string {
	if field, ok := m.Resolve(schema.FieldTitle); ok {
		if v := stringField(fields, field); v != "" {
			return v
		}
	}
	return document.DeriveTitle(id)
}

func contentOf(fields map[string]any) string {
	for _, name := range contentPriority {
		if v := textValue(fields[name]); v != "" {
			return v
		}
	}
	return ""
}

// textValue coerces a content candidate: strings pass through trimmed,
// lists of strings join with single spaces.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func mappedOr(fields map[string]any, m schema.Mapping, logical schema.Field, fallback string) string {
	if field, ok := m.Resolve(logical); ok {
		if v := stringField(fields, field); v != "" {
			return v
		}
	}
	return fallback
}

// typeOf prefers the mapped extension field, falling back to the file name
// inside the identifier.
func typeOf(fields map[string]any, m schema.Mapping, id string) string {
	if field, ok := m.Resolve(schema.FieldExtension); ok {
		if v := strings.TrimPrefix(stringField(fields, field), "."); v != "" {
			return strings.ToUpper(v)
		}
	}
	if id != "" {
		return document.TypeFromName(path.Base(id))
	}
	return document.DefaultType
}

func modifiedOf(fields map[string]any, m schema.Mapping) time.Time {
	field, ok := m.Resolve(schema.FieldLastModified)
	if !ok {
		return time.Time{}
	}
	v := stringField(fields, field)
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t
	}
	return time.Time{}
}

func sizeOf(fields map[string]any, m schema.Mapping) string {
	field, ok := m.Resolve(schema.FieldSize)
	if !ok {
		return document.FormatSize(0)
	}
	switch v := fields[field].(type) {
	case nil:
		return document.FormatSize(0)
	case float64:
		return document.FormatSize(int64(v))
	case int:
		return document.FormatSize(int64(v))
	case int64:
		return document.FormatSize(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return document.FormatSize(0)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "Unknown"
		}
		return document.FormatSize(n)
	default:
		return "Unknown"
	}
}

func stringField(fields map[string]any, name string) string {
	if s, ok := fields[name].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
