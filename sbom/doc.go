// Package sbom loads SPDX JSON documents into a typed package graph,
// decides which packages are test or development tooling, prunes them
// together with every relationship touching them, and writes the result
// back with deterministic key order. Fields the model does not know about
// travel through untouched.
package sbom
