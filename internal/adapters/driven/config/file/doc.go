// Package file provides a TOML configuration file adapter.
//
// The file is optional and read-only: a missing file yields an empty store,
// so every setting falls back to the environment and built-in defaults.
// Tables are flattened to dot-notation keys:
//
//	[vector]
//	index = "docs"   # read as "vector.index"
package file
