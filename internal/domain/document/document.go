package document

import (
	"math"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Defaults substituted for absent metadata.
const (
	PlaceholderTitle = "Untitled Document"
	DefaultAuthor    = "Unknown"
	DefaultCategory  = "Document"
	DefaultType      = "FILE"
)

// Content-availability status flags.
const (
	StatusAvailable    = "available"
	StatusMetadataOnly = "metadata_only"
)

// Document is the canonical entity produced from one search hit
// (immutable value object). Empty content is meaningful: it marks a
// document whose text could not be extracted.
type Document struct {
	id           string
	title        string
	content      string
	author       string
	category     string
	docType      string
	lastModified time.Time
	size         string
	score        float64
	status       string
	raw          map[string]any
}

// Reconstruct creates a Document from normalized fields. The status flag is
// derived from content presence; the raw hit bag is retained for
// traceability.
func Reconstruct(
	id, title, content, author, category, docType string,
	lastModified time.Time, size string, score float64, raw map[string]any,
) Document {
	status := StatusMetadataOnly
	if content != "" {
		status = StatusAvailable
	}
	return Document{
		id:           id,
		title:        title,
		content:      content,
		author:       author,
		category:     category,
		docType:      docType,
		lastModified: lastModified,
		size:         size,
		score:        score,
		status:       status,
		raw:          raw,
	}
}

// ID returns the stable opaque identifier (typically a storage path).
func (d *Document) ID() string { return d.id }

// Title returns the human-readable title (never empty).
func (d *Document) Title() string { return d.title }

// Content returns the extracted text content ("" when unavailable).
func (d *Document) Content() string { return d.content }

// Author returns the document author.
func (d *Document) Author() string { return d.author }

// Category returns the document category.
func (d *Document) Category() string { return d.category }

// Type returns the short uppercase document type token.
func (d *Document) Type() string { return d.docType }

// LastModified returns the last-modified timestamp (zero when unknown).
func (d *Document) LastModified() time.Time { return d.lastModified }

// Size returns the human-readable size string.
func (d *Document) Size() string { return d.size }

// Score returns the backend relevance score, unmodified.
func (d *Document) Score() float64 { return d.score }

// Status returns the content-availability flag.
func (d *Document) Status() string { return d.status }

// Raw returns the original hit field bag.
func (d *Document) Raw() map[string]any { return d.raw }

// Source is a citation entry for one retrieved document.
type Source struct {
	name      string
	author    string
	relevance float64
	docType   string
	category  string
	id        string
}

// SourceOf builds the citation for a document.
func SourceOf(d Document) Source {
	return Source{
		name:      d.title,
		author:    d.author,
		relevance: d.score,
		docType:   d.docType,
		category:  d.category,
		id:        d.id,
	}
}

// Name returns the cited document title.
func (s Source) Name() string { return s.name }

// Author returns the cited document author.
func (s Source) Author() string { return s.author }

// Relevance returns the raw backend score.
func (s Source) Relevance() float64 { return s.relevance }

// DisplayRelevance returns the presentation-only 0-1 relevance.
func (s Source) DisplayRelevance() float64 { return DisplayRelevance(s.relevance) }

// Type returns the cited document type token.
func (s Source) Type() string { return s.docType }

// Category returns the cited document category.
func (s Source) Category() string { return s.category }

// ID returns the cited document identifier.
func (s Source) ID() string { return s.id }

// DisplayRelevance maps a raw backend score to a 0-1 value for display.
// Scores of 10 and above saturate at 1; non-positive scores floor at 0.
// Ranking order always follows the backend, never this value.
func DisplayRelevance(score float64) float64 {
	return math.Min(1, math.Max(0, score)/10)
}

// FormatSize renders a byte count using binary units, up to two decimals
// with trailing zeros trimmed: 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units[i]
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// knownExtensions are the document file extensions stripped during title
// derivation.
var knownExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "txt": true, "md": true, "rtf": true,
	"csv": true, "json": true, "xml": true, "html": true, "htm": true,
	"odt": true,
}

// DeriveTitle builds a human-readable title from a document identifier:
// take the last path segment, percent-decode it, strip one known document
// extension, turn underscores, hyphens and camelCase boundaries into word
// breaks, and capitalize each word. The result is never empty; inputs that
// clean away entirely yield PlaceholderTitle. Already-clean titles pass
// through unchanged.
func DeriveTitle(id string) string {
	seg := lastSegment(id)

	if dec, err := url.PathUnescape(seg); err == nil {
		seg = dec
	} else {
		seg = strings.ReplaceAll(seg, "%20", " ")
	}

	if ext := strings.TrimPrefix(path.Ext(seg), "."); knownExtensions[strings.ToLower(ext)] {
		seg = strings.TrimSuffix(seg, path.Ext(seg))
	}

	seg = strings.NewReplacer("_", " ", "-", " ").Replace(seg)
	seg = camelBoundary.ReplaceAllString(seg, "$1 $2")

	words := strings.Fields(seg)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	title := strings.Join(words, " ")
	if title == "" {
		return PlaceholderTitle
	}
	return title
}

// TypeFromName extracts the uppercase extension token from a file name,
// or DefaultType when there is none.
func TypeFromName(name string) string {
	if name == "" || !strings.Contains(name, ".") {
		return DefaultType
	}
	ext := name[strings.LastIndex(name, ".")+1:]
	if ext == "" {
		return DefaultType
	}
	return strings.ToUpper(ext)
}

func lastSegment(id string) string {
	s := strings.TrimRight(id, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func capitalize(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
