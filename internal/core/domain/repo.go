package domain

import (
	"fmt"
	"strings"
)

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner string
	Name  string
}

// ParseRepoRef parses an "owner/name" reference.
// Exactly one slash with non-empty parts is accepted.
func ParseRepoRef(s string) (RepoRef, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, s)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

// String returns the "owner/name" form.
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}
