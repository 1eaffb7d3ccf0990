package common

import (
	"fmt"

	"github.com/dchest/siphash"
)

const (
	sipKey0 = 0x6465_7063_6c65_616e
	sipKey1 = 0x7370_6478_2d73_626f
)

// Sipit is a fast non-cryptographic fingerprint; equal content always gives
// equal fingerprints across runs and hosts.
func Sipit(content []byte) uint64 {
	return siphash.Hash(sipKey0, sipKey1, content)
}

func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", Sipit(content))
}
