package document

import (
	"strings"

	"github.com/google/uuid"
)

// Document is a node of a document tree. Only ID is required for
// persistence; the remaining fields are optional content. A nil Embedding or
// Tags map means the field is unset.
type Document struct {
	ID          string         `json:"id"`
	ParentID    string         `json:"parent_id,omitempty"`
	Granularity int            `json:"granularity,omitempty"`
	MimeType    string         `json:"mime_type,omitempty"`
	URI         string         `json:"uri,omitempty"`
	Text        string         `json:"text,omitempty"`
	Tags        map[string]any `json:"tags,omitempty"`
	Embedding   []float64      `json:"embedding,omitempty"`
	Chunks      []*Document    `json:"chunks,omitempty"`
}

// New creates a document with a random hex id.
func New() *Document {
	return &Document{ID: NewID()}
}

// NewID returns a random 32-character hex identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// AddChunk appends chunk as a child, linking its ParentID and Granularity.
func (d *Document) AddChunk(chunk *Document) *Document {
	chunk.ParentID = d.ID
	chunk.Granularity = d.Granularity + 1
	d.Chunks = append(d.Chunks, chunk)
	return chunk
}

// HasContent reports whether any content field is set.
func (d *Document) HasContent() bool {
	return d.Text != "" || d.Tags != nil || d.Embedding != nil || d.Chunks != nil ||
		d.MimeType != "" || d.URI != ""
}

// Reset clears every field except ID.
func (d *Document) Reset() {
	*d = Document{ID: d.ID}
}

// Apply copies the content of src onto d, keeping d.ID. The embedding is
// copied only when withEmbedding is set, otherwise it is cleared.
func (d *Document) Apply(src *Document, withEmbedding bool) {
	id := d.ID
	*d = *src
	d.ID = id
	if !withEmbedding {
		d.Embedding = nil
	}
}

// ClearEmbeddings unsets the embedding of d and of every nested chunk.
func (d *Document) ClearEmbeddings() {
	d.Embedding = nil
	for _, chunk := range d.Chunks {
		if chunk != nil {
			chunk.ClearEmbeddings()
		}
	}
}
