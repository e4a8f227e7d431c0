package pinecone

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// classify maps SDK errors onto domain errors. Control plane failures carry
// an HTTP status; data plane failures carry a gRPC code.
func classify(err error) error {
	var pcErr *pinecone.PineconeError
	if errors.As(err, &pcErr) {
		switch pcErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("pinecone: %w: %v", domain.ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("pinecone: %w: %v", domain.ErrNotFound, err)
		}
		return fmt.Errorf("pinecone: %w", err)
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("pinecone: %w: %v", domain.ErrUnauthorized, err)
	case codes.NotFound:
		return fmt.Errorf("pinecone: %w: %v", domain.ErrNotFound, err)
	}
	return fmt.Errorf("pinecone: %w", err)
}

// IsAlreadyExists checks if a create failed because the index exists.
func IsAlreadyExists(err error) bool {
	var pcErr *pinecone.PineconeError
	return errors.As(err, &pcErr) && pcErr.Code == http.StatusConflict
}
