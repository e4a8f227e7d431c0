// Package services implements the driving port interfaces.
// Services contain the core ingestion logic and orchestrate
// calls to driven ports (adapters):
//
//   - Assembler: reads every document and segments it into chunks
//   - ChunkEmbedder: embeds chunks with truncation and a single retry
//   - BatchSink: provisions the index and upserts fixed-size batches
//   - IngestService: runs the two phases around a persisted checkpoint
//   - SettingsService: resolves configuration from file and environment
//
// Services are pure Go; they perform no I/O beyond the ports they are given.
package services
