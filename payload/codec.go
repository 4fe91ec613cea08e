package payload

import (
	"encoding/json"
	"fmt"

	"github.com/viant/docstore/document"
)

// Codec converts documents to payload blobs and back.
type Codec struct {
	Compression Compression
}

// Marshal serialises doc without its own embedding. Chunks are serialised in
// full, embeddings included.
func (c Codec) Marshal(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("payload: nil document")
	}
	node := *doc
	node.Embedding = nil
	data, err := json.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("payload: marshal %q: %w", doc.ID, err)
	}
	return compress(data, c.Compression)
}

// Unmarshal decodes a payload written by Marshal with any compression.
func (c Codec) Unmarshal(blob []byte) (*document.Document, error) {
	data, err := decompress(blob)
	if err != nil {
		return nil, err
	}
	doc := &document.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("payload: unmarshal: %w", err)
	}
	return doc, nil
}
