// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Enumerates and reads named documents
//   - Segmenter: Splits document text into chunks
//   - Embedder: Generates vector embeddings from text
//   - TokenCounter: Estimates and enforces token budgets
//   - VectorIndex: Remote vector storage (Pinecone, Milvus)
//   - CheckpointStore: Persists embedded chunks between phases
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - RepositoryFetcher: Copies markdown files from a GitHub repository
//     into the document source directory. Only used when a repository is given.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
