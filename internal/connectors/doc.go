// Package connectors provides the collaborators that bring documents into the
// pipeline. Each connector knows how to reach a specific kind of source
// (a local directory, a GitHub repository).
package connectors
