// Package indexing talks to the external document indexing and question
// answering service that attachments are ingested into.
package indexing

import (
	"context"
	"io"
)

type Document struct {
	// Path is the File Store key the bytes were read from.
	Path     string
	Filename string
	TaskID   uint
	Body     io.Reader
}

type Query struct {
	Instructions []string
	ContextIDs   []string
	Question     string
}

// Indexer ingests documents and answers questions over them.
type Indexer interface {
	// Ingest returns the opaque content id assigned to the document.
	Ingest(ctx context.Context, doc Document) (string, error)
	// Query returns the answer text.
	Query(ctx context.Context, q Query) (string, error)
}
