package driven

import "context"

// DocumentSource enumerates named documents and reads their raw text.
type DocumentSource interface {
	// List returns the names of eligible documents in enumeration order.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw text of a document.
	// Failures are reported as *domain.SourceReadError.
	Read(ctx context.Context, name string) (string, error)
}
