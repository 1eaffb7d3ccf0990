package sbom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spdx/tools-golang/spdx/v2/common"
)

const (
	keySPDXID             = "SPDXID"
	keySPDXVersion        = "spdxVersion"
	keyName               = "name"
	keyDocumentNamespace  = "documentNamespace"
	keyCreationInfo       = "creationInfo"
	keyDocumentDescribes  = "documentDescribes"
	keyPackages           = "packages"
	keyRelationships      = "relationships"
	keyCreated            = "created"
	keyCreators           = "creators"
	keyLicenseListVersion = "licenseListVersion"
	keyVersionInfo        = "versionInfo"
	keySupplier           = "supplier"
	keyOriginator         = "originator"
	keyElement            = "spdxElementId"
	keyRelated            = "relatedSpdxElement"
	keyRelationshipType   = "relationshipType"
	keyFiles              = "files"
	keySnippets           = "snippets"
)

// Load reads one SPDX JSON document.
func Load(reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse decodes an SPDX JSON document. Both the packages and relationships
// sections must be present; they may be empty.
func Parse(content []byte) (*Document, error) {
	var fields Fields
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	if fields == nil {
		return nil, malformed("document is not a JSON object")
	}
	doc := &Document{}
	var err error
	if doc.SPDXID, err = takeString(fields, keySPDXID); err != nil {
		return nil, err
	}
	if doc.SPDXVersion, err = takeString(fields, keySPDXVersion); err != nil {
		return nil, err
	}
	if doc.Name, err = takeString(fields, keyName); err != nil {
		return nil, err
	}
	if doc.DocumentNamespace, err = takeString(fields, keyDocumentNamespace); err != nil {
		return nil, err
	}
	if raw, ok := fields[keyCreationInfo]; ok && !isNull(raw) {
		doc.CreationInfo, err = parseCreationInfo(raw)
		if err != nil {
			return nil, err
		}
		delete(fields, keyCreationInfo)
	}
	if raw, ok := fields[keyDocumentDescribes]; ok && !isNull(raw) {
		doc.DocumentDescribes = make([]string, 0, 4)
		if err := json.Unmarshal(raw, &doc.DocumentDescribes); err != nil {
			return nil, malformed("%s: %v", keyDocumentDescribes, err)
		}
		if doc.DocumentDescribes == nil {
			doc.DocumentDescribes = []string{}
		}
		delete(fields, keyDocumentDescribes)
	}
	if doc.Packages, err = parsePackages(fields); err != nil {
		return nil, err
	}
	if doc.Relationships, err = parseRelationships(fields); err != nil {
		return nil, err
	}
	doc.Extra = fields
	doc.reindex()
	return doc, nil
}

// isNull is true for an explicit JSON null. Known members holding null stay
// in the extras, so they are written back as null.
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func section(fields Fields, key string) ([]json.RawMessage, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, malformed("missing %q section", key)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed("%q section is not a list: %v", key, err)
	}
	delete(fields, key)
	return items, nil
}

func parsePackages(fields Fields) ([]*Package, error) {
	items, err := section(fields, keyPackages)
	if err != nil {
		return nil, err
	}
	result := make([]*Package, 0, len(items))
	seen := make(map[string]bool, len(items))
	for at, item := range items {
		pkg, err := parsePackage(item)
		if err != nil {
			return nil, fmt.Errorf("package #%d: %w", at+1, err)
		}
		if seen[pkg.SPDXID] {
			return nil, malformed("duplicate package identifier %q", pkg.SPDXID)
		}
		seen[pkg.SPDXID] = true
		result = append(result, pkg)
	}
	return result, nil
}

func parsePackage(raw json.RawMessage) (*Package, error) {
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, malformed("package is not a JSON object")
	}
	pkg := &Package{}
	var err error
	if pkg.SPDXID, err = takeString(fields, keySPDXID); err != nil {
		return nil, err
	}
	if len(pkg.SPDXID) == 0 {
		return nil, malformed("package without %s", keySPDXID)
	}
	if pkg.Name, err = takeString(fields, keyName); err != nil {
		return nil, err
	}
	if pkg.VersionInfo, err = takeString(fields, keyVersionInfo); err != nil {
		return nil, err
	}
	if pkg.Supplier, err = takeString(fields, keySupplier); err != nil {
		return nil, err
	}
	if pkg.Originator, err = takeString(fields, keyOriginator); err != nil {
		return nil, err
	}
	pkg.Extra = fields
	return pkg, nil
}

func parseRelationships(fields Fields) ([]*Relationship, error) {
	items, err := section(fields, keyRelationships)
	if err != nil {
		return nil, err
	}
	result := make([]*Relationship, 0, len(items))
	for at, item := range items {
		var members Fields
		if err := json.Unmarshal(item, &members); err != nil || members == nil {
			return nil, malformed("relationship #%d is not a JSON object", at+1)
		}
		relation := &Relationship{}
		if relation.Element, err = takeString(members, keyElement); err != nil {
			return nil, err
		}
		if relation.Related, err = takeString(members, keyRelated); err != nil {
			return nil, err
		}
		if relation.Type, err = takeString(members, keyRelationshipType); err != nil {
			return nil, err
		}
		if len(relation.Element) == 0 || len(relation.Related) == 0 {
			return nil, malformed("relationship #%d lacks an endpoint", at+1)
		}
		relation.Extra = members
		result = append(result, relation)
	}
	return result, nil
}

func parseCreationInfo(raw json.RawMessage) (*CreationInfo, error) {
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, malformed("%s is not a JSON object", keyCreationInfo)
	}
	info := &CreationInfo{}
	var err error
	if info.Created, err = takeString(fields, keyCreated); err != nil {
		return nil, err
	}
	if info.LicenseListVersion, err = takeString(fields, keyLicenseListVersion); err != nil {
		return nil, err
	}
	if creators, ok := fields[keyCreators]; ok && !isNull(creators) {
		if err := json.Unmarshal(creators, &info.Creators); err != nil {
			return nil, malformed("%s: %v", keyCreators, err)
		}
		delete(fields, keyCreators)
	}
	info.Extra = fields
	return info, nil
}

// takeString moves a string member out of fields. Empty strings stay in
// fields, so that an explicit "" is written back as it was read.
func takeString(fields Fields, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", malformed("member %q is not a string", key)
	}
	if len(value) > 0 {
		delete(fields, key)
	}
	return value, nil
}

// Write serializes the document as indented JSON with sorted keys. The same
// model always produces the same bytes.
func Write(writer io.Writer, doc *Document) error {
	content, err := Marshal(doc)
	if err != nil {
		return err
	}
	_, err = writer.Write(content)
	return err
}

func Marshal(doc *Document) ([]byte, error) {
	tree, err := doc.fields()
	if err != nil {
		return nil, err
	}
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tree); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (it *Document) fields() (Fields, error) {
	result := it.Extra.clone()
	putString(result, keySPDXID, it.SPDXID)
	putString(result, keySPDXVersion, it.SPDXVersion)
	putString(result, keyName, it.Name)
	putString(result, keyDocumentNamespace, it.DocumentNamespace)
	if it.CreationInfo != nil {
		info := it.CreationInfo.Extra.clone()
		putString(info, keyCreated, it.CreationInfo.Created)
		putString(info, keyLicenseListVersion, it.CreationInfo.LicenseListVersion)
		if it.CreationInfo.Creators != nil {
			if err := putValue(info, keyCreators, it.CreationInfo.Creators); err != nil {
				return nil, err
			}
		}
		if err := putValue(result, keyCreationInfo, info); err != nil {
			return nil, err
		}
	}
	if it.DocumentDescribes != nil {
		if err := putValue(result, keyDocumentDescribes, it.DocumentDescribes); err != nil {
			return nil, err
		}
	}
	packages := make([]Fields, 0, len(it.Packages))
	for _, pkg := range it.Packages {
		fields := pkg.Extra.clone()
		putString(fields, keySPDXID, pkg.SPDXID)
		putString(fields, keyName, pkg.Name)
		putString(fields, keyVersionInfo, pkg.VersionInfo)
		putString(fields, keySupplier, pkg.Supplier)
		putString(fields, keyOriginator, pkg.Originator)
		packages = append(packages, fields)
	}
	if err := putValue(result, keyPackages, packages); err != nil {
		return nil, err
	}
	relationships := make([]Fields, 0, len(it.Relationships))
	for _, relation := range it.Relationships {
		fields := relation.Extra.clone()
		putString(fields, keyElement, relation.Element)
		putString(fields, keyRelated, relation.Related)
		putString(fields, keyRelationshipType, relation.Type)
		relationships = append(relationships, fields)
	}
	if err := putValue(result, keyRelationships, relationships); err != nil {
		return nil, err
	}
	return result, nil
}

func putString(fields Fields, key, value string) {
	if len(value) > 0 {
		fields[key], _ = encode(value)
	}
}

func putValue(fields Fields, key string, value interface{}) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	fields[key] = raw
	return nil
}

func encode(value interface{}) (json.RawMessage, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buffer.Bytes(), "\n")), nil
}

// Validate checks the structural invariants pruning relies on: both
// sections exist, described elements exist and every relationship endpoint
// resolves.
func (it *Document) Validate() error {
	if it == nil {
		return malformed("no document")
	}
	if it.Packages == nil {
		return malformed("missing %q section", keyPackages)
	}
	if it.Relationships == nil {
		return malformed("missing %q section", keyRelationships)
	}
	known, err := it.knownElements()
	if err != nil {
		return err
	}
	for _, described := range it.DocumentDescribes {
		if !known[described] {
			return malformed("%s references unknown element %q", keyDocumentDescribes, described)
		}
	}
	for at, relation := range it.Relationships {
		for _, endpoint := range []string{relation.Element, relation.Related} {
			if known[endpoint] {
				continue
			}
			outside, err := outsideReference(endpoint)
			if err != nil {
				return malformed("relationship #%d: %v", at+1, err)
			}
			if !outside {
				return malformed("relationship #%d references unknown element %q", at+1, endpoint)
			}
		}
	}
	return nil
}

// knownElements lists identifiers resolvable inside this document: the
// document itself, packages, files and snippets.
func (it *Document) knownElements() (map[string]bool, error) {
	known := make(map[string]bool, len(it.Packages)+1)
	if len(it.SPDXID) > 0 {
		known[it.SPDXID] = true
	}
	for _, pkg := range it.Packages {
		known[pkg.SPDXID] = true
	}
	for _, key := range []string{keyFiles, keySnippets} {
		raw, ok := it.Extra[key]
		if !ok {
			continue
		}
		var elements []struct {
			SPDXID string `json:"SPDXID"`
		}
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, malformed("%q section: %v", key, err)
		}
		for _, element := range elements {
			if len(element.SPDXID) > 0 {
				known[element.SPDXID] = true
			}
		}
	}
	return known, nil
}

// outsideReference reports identifiers which legitimately point outside the
// document: NONE, NOASSERTION and DocumentRef-x:SPDXRef-y references.
func outsideReference(reference string) (bool, error) {
	var element common.DocElementID
	if err := element.UnmarshalJSON([]byte(`"` + reference + `"`)); err != nil {
		return false, err
	}
	return len(element.SpecialID) > 0 || len(element.DocumentRefID) > 0, nil
}
