// Package domain defines the core entities of the ingestion pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A named piece of raw text from a document source
//   - Chunk: A bounded-size segment of a document with provenance
//   - EmbeddedChunk: A chunk plus the vector computed for its text
//   - VectorRecord: The {id, vector, metadata} entry stored in an index
//   - AppSettings: The configuration of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
