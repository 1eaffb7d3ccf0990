package sbom

// Decision records what happened to one matched package.
type Decision struct {
	SPDXID  string `json:"spdxId"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Reason  string `json:"reason"`
}

// Report summarizes one pruning run.
type Report struct {
	Removed              []Decision `json:"removed"`
	Exempted             []Decision `json:"exempted"`
	DroppedRelationships int        `json:"droppedRelationships"`
	KeptPackages         int        `json:"keptPackages"`
	KeptRelationships    int        `json:"keptRelationships"`
}

func (it *Report) Changed() bool {
	return len(it.Removed) > 0
}

// Prune removes every package the matcher selects, together with every
// relationship touching a removed package. Described root packages are
// exempt. The input document is never modified; when nothing is removed
// the input itself is returned.
func Prune(doc *Document, spec RemovalSpec, matcher *Matcher) (*Document, *Report, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}
	if matcher == nil {
		matcher = DefaultMatcher()
	}
	report := &Report{
		Removed:           []Decision{},
		Exempted:          []Decision{},
		KeptPackages:      len(doc.Packages),
		KeptRelationships: len(doc.Relationships),
	}
	if spec.IsEmpty() {
		return doc, report, nil
	}

	graph := NewGraph(doc)
	roots := graph.Roots()
	removed := make(map[string]bool)
	for _, pkg := range doc.Packages {
		remove, reason := matcher.Classify(pkg, spec, graph)
		if !remove {
			continue
		}
		decision := Decision{SPDXID: pkg.SPDXID, Name: pkg.Name, Version: pkg.VersionInfo, Reason: reason}
		if roots[pkg.SPDXID] {
			report.Exempted = append(report.Exempted, decision)
			continue
		}
		removed[pkg.SPDXID] = true
		report.Removed = append(report.Removed, decision)
	}
	if len(removed) == 0 {
		return doc, report, nil
	}

	result := doc.shallow()
	result.Packages = result.Packages[:0]
	for _, pkg := range doc.Packages {
		if !removed[pkg.SPDXID] {
			result.Packages = append(result.Packages, pkg)
		}
	}
	result.Relationships = result.Relationships[:0]
	for _, relation := range doc.Relationships {
		if removed[relation.Element] || removed[relation.Related] {
			report.DroppedRelationships++
			continue
		}
		result.Relationships = append(result.Relationships, relation)
	}
	result.reindex()
	report.KeptPackages = len(result.Packages)
	report.KeptRelationships = len(result.Relationships)
	return result, report, nil
}
