package sbom

import (
	"encoding/json"
	"sort"
)

const (
	// SPDXMediaType is the media type for SPDX JSON documents.
	SPDXMediaType = "application/spdx+json"

	DocumentID = "SPDXRef-DOCUMENT"

	RelationshipDescribes   = "DESCRIBES"
	RelationshipDescribedBy = "DESCRIBED_BY"
)

// Fields holds record members the model does not interpret. Values are kept
// as raw JSON so they are written back exactly as they were read.
type Fields map[string]json.RawMessage

func (it Fields) clone() Fields {
	result := make(Fields, len(it))
	for key, value := range it {
		result[key] = value
	}
	return result
}

// CreationInfo is the document creation section.
type CreationInfo struct {
	Created            string
	Creators           []string
	LicenseListVersion string
	Extra              Fields
}

// Package is one dependency record. Packages are never modified after load;
// pruning only drops them.
type Package struct {
	SPDXID      string
	Name        string
	VersionInfo string
	Supplier    string
	Originator  string
	Extra       Fields
}

// Relationship is a directed, typed edge between two element identifiers.
type Relationship struct {
	Element string
	Related string
	Type    string
	Extra   Fields
}

// Document is the root of an SPDX JSON document.
type Document struct {
	SPDXID            string
	SPDXVersion       string
	Name              string
	DocumentNamespace string
	CreationInfo      *CreationInfo
	DocumentDescribes []string
	Packages          []*Package
	Relationships     []*Relationship
	Extra             Fields

	index map[string]*Package
}

// NameSet is a case-sensitive set of exact package names.
type NameSet map[string]bool

func NewNameSet(names ...string) NameSet {
	result := make(NameSet, len(names))
	for _, name := range names {
		result.Add(name)
	}
	return result
}

func (it NameSet) Add(name string) {
	if len(name) > 0 {
		it[name] = true
	}
}

func (it NameSet) Has(name string) bool {
	return it[name]
}

func (it NameSet) Sorted() []string {
	result := make([]string, 0, len(it))
	for name := range it {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// RemovalSpec tells which packages one pruning run removes.
type RemovalSpec struct {
	ExplicitNames NameSet
	AutoDetect    bool
}

func (it RemovalSpec) IsEmpty() bool {
	return len(it.ExplicitNames) == 0 && !it.AutoDetect
}

// AttributionOverride carries call-site attribution values. Empty means unset.
type AttributionOverride struct {
	Organization string
	Person       string
}

// EnvAttribution carries attribution values sourced from configuration or
// environment. Empty means unset.
type EnvAttribution struct {
	Organization string
	Person       string
}

// Package finds a package by its SPDX identifier.
func (it *Document) Package(id string) (*Package, bool) {
	if it.index != nil {
		found, ok := it.index[id]
		return found, ok
	}
	for _, candidate := range it.Packages {
		if candidate.SPDXID == id {
			return candidate, true
		}
	}
	return nil, false
}

func (it *Document) reindex() {
	it.index = make(map[string]*Package, len(it.Packages))
	for _, pkg := range it.Packages {
		it.index[pkg.SPDXID] = pkg
	}
}

// shallow returns a copy sharing the immutable records but owning its own
// slices and maps.
func (it *Document) shallow() *Document {
	result := &Document{
		SPDXID:            it.SPDXID,
		SPDXVersion:       it.SPDXVersion,
		Name:              it.Name,
		DocumentNamespace: it.DocumentNamespace,
		Extra:             it.Extra.clone(),
	}
	if it.CreationInfo != nil {
		info := *it.CreationInfo
		info.Creators = append([]string(nil), it.CreationInfo.Creators...)
		info.Extra = it.CreationInfo.Extra.clone()
		result.CreationInfo = &info
	}
	if it.DocumentDescribes != nil {
		result.DocumentDescribes = append(make([]string, 0, len(it.DocumentDescribes)), it.DocumentDescribes...)
	}
	result.Packages = append(make([]*Package, 0, len(it.Packages)), it.Packages...)
	result.Relationships = append(make([]*Relationship, 0, len(it.Relationships)), it.Relationships...)
	return result
}
