package sbom

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument marks input that lacks required sections or is
	// internally inconsistent before any pruning happens.
	ErrMalformedDocument = errors.New("malformed SBOM document")
)

func malformed(format string, details ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, details...))
}
