package sbom

import (
	"strings"
)

const (
	ReasonExplicit  = "explicit"
	ReasonHeuristic = "heuristic"
)

// Rule is one heuristic classification of test or development tooling.
type Rule interface {
	Name() string
	Matches(pkg *Package, graph *Graph) bool
}

// Graph is a read-only view over a document with the relationships of each
// element indexed, so rules can look at incident edges in constant time.
type Graph struct {
	doc      *Document
	outgoing map[string][]*Relationship
	incoming map[string][]*Relationship
}

func NewGraph(doc *Document) *Graph {
	graph := &Graph{
		doc:      doc,
		outgoing: make(map[string][]*Relationship, len(doc.Packages)),
		incoming: make(map[string][]*Relationship, len(doc.Packages)),
	}
	for _, relation := range doc.Relationships {
		graph.outgoing[relation.Element] = append(graph.outgoing[relation.Element], relation)
		graph.incoming[relation.Related] = append(graph.incoming[relation.Related], relation)
	}
	return graph
}

func (it *Graph) Document() *Document {
	return it.doc
}

// Outgoing lists relationships where id is the spdxElementId.
func (it *Graph) Outgoing(id string) []*Relationship {
	return it.outgoing[id]
}

// Incoming lists relationships where id is the relatedSpdxElement.
func (it *Graph) Incoming(id string) []*Relationship {
	return it.incoming[id]
}

// Roots lists packages the document describes. They are never pruned.
func (it *Graph) Roots() map[string]bool {
	roots := make(map[string]bool)
	for _, id := range it.doc.DocumentDescribes {
		roots[id] = true
	}
	self := it.doc.SPDXID
	if len(self) == 0 {
		self = DocumentID
	}
	for _, relation := range it.outgoing[self] {
		if relation.Type == RelationshipDescribes {
			roots[relation.Related] = true
		}
	}
	for _, relation := range it.incoming[self] {
		if relation.Type == RelationshipDescribedBy {
			roots[relation.Element] = true
		}
	}
	return roots
}

// Matcher decides package removal: exact names always apply, heuristic
// rules only when auto detection is requested. Either one is enough.
type Matcher struct {
	heuristics []Rule
}

func NewMatcher(heuristics ...Rule) *Matcher {
	return &Matcher{heuristics: heuristics}
}

// DefaultMatcher uses the built-in tooling rule set.
func DefaultMatcher() *Matcher {
	return NewMatcher(DefaultRuleSet())
}

func (it *Matcher) ShouldRemove(pkg *Package, spec RemovalSpec, graph *Graph) bool {
	remove, _ := it.Classify(pkg, spec, graph)
	return remove
}

// Classify is ShouldRemove with the reason of the decision.
func (it *Matcher) Classify(pkg *Package, spec RemovalSpec, graph *Graph) (bool, string) {
	if pkg == nil {
		return false, ""
	}
	if spec.ExplicitNames.Has(pkg.Name) {
		return true, ReasonExplicit
	}
	if !spec.AutoDetect {
		return false, ""
	}
	for _, rule := range it.heuristics {
		if rule != nil && rule.Matches(pkg, graph) {
			return true, ReasonHeuristic + ":" + rule.Name()
		}
	}
	return false, ""
}

// RuleSet is the default heuristic: well known tool names and relationship
// types that only exist for development. Build it with NewRuleSet or
// LoadRuleSet; a compiled RuleSet is safe for concurrent use.
type RuleSet struct {
	Tools             []string `yaml:"tools"`
	Prefixes          []string `yaml:"prefixes"`
	RelationshipTypes []string `yaml:"relationshipTypes"`

	tools     map[string]bool
	relations map[string]bool
}

var (
	defaultTools = []string{
		"pytest", "mock", "coverage", "tox", "nox", "nose", "nose2", "flake8",
		"pylint", "mypy", "black", "isort", "ruff", "bandit", "hypothesis",
		"freezegun", "pre-commit", "unittest2", "jest", "mocha", "chai",
		"sinon", "nyc", "istanbul", "eslint", "prettier", "karma", "jasmine",
		"tslint", "stylelint", "vitest", "junit", "mockito", "hamcrest",
		"assertj", "testng", "jacoco", "testify", "ginkgo", "gomega", "rspec",
		"rubocop", "minitest", "simplecov", "phpunit", "codecov",
	}
	defaultPrefixes = []string{
		"@types/", "@testing-library/", "@jest/", "eslint-plugin-",
		"eslint-config-", "pytest-", "types-",
	}
	defaultRelationshipTypes = []string{
		"DEV_DEPENDENCY_OF", "TEST_DEPENDENCY_OF", "DEV_TOOL_OF",
		"TEST_TOOL_OF", "TEST_OF", "BUILD_TOOL_OF",
	}
	separators = "-_."
)

func DefaultRuleSet() *RuleSet {
	return NewRuleSet(defaultTools, defaultPrefixes, defaultRelationshipTypes)
}

func NewRuleSet(tools, prefixes, relationshipTypes []string) *RuleSet {
	result := &RuleSet{
		Tools:             tools,
		Prefixes:          prefixes,
		RelationshipTypes: relationshipTypes,
	}
	result.compile()
	return result
}

func (it *RuleSet) compile() {
	it.tools = make(map[string]bool, len(it.Tools))
	for _, tool := range it.Tools {
		it.tools[strings.ToLower(strings.TrimSpace(tool))] = true
	}
	it.relations = make(map[string]bool, len(it.RelationshipTypes))
	for _, kind := range it.RelationshipTypes {
		it.relations[strings.ToUpper(strings.TrimSpace(kind))] = true
	}
}

func (it *RuleSet) Name() string {
	return "tooling"
}

func (it *RuleSet) Matches(pkg *Package, graph *Graph) bool {
	return it.MatchesName(pkg.Name) || it.matchesRelationship(pkg, graph)
}

// MatchesName checks name conventions: a tool name alone, a tool name
// followed or preceded by a separator, npm scopes, the last path segment
// before a major version suffix and Maven artifacts after "group:".
func (it *RuleSet) MatchesName(name string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if len(lowered) == 0 {
		return false
	}
	for _, prefix := range it.Prefixes {
		prefix = strings.ToLower(prefix)
		if len(prefix) > 0 && strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	if strings.HasPrefix(lowered, "@") {
		scope, rest, found := strings.Cut(lowered[1:], "/")
		if found && (it.tools[scope] || it.matchesToken(rest)) {
			return true
		}
	}
	segments := strings.Split(lowered, "/")
	if len(segments) > 1 && majorVersion(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}
	lowered = segments[len(segments)-1]
	group, artifacts, found := strings.Cut(lowered, ":")
	if !found {
		return it.matchesToken(group)
	}
	for _, artifact := range strings.Split(artifacts, ":") {
		if it.matchesToken(artifact) {
			return true
		}
	}
	return false
}

// majorVersion recognizes Go module suffixes like "v2".
func majorVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, digit := range segment[1:] {
		if digit < '0' || digit > '9' {
			return false
		}
	}
	return true
}

func (it *RuleSet) matchesToken(token string) bool {
	if it.tools[token] {
		return true
	}
	for tool := range it.tools {
		if len(token) <= len(tool) {
			continue
		}
		if strings.HasPrefix(token, tool) && strings.ContainsRune(separators, rune(token[len(tool)])) {
			return true
		}
		cut := len(token) - len(tool) - 1
		if strings.HasSuffix(token, tool) && strings.ContainsRune(separators, rune(token[cut])) {
			return true
		}
	}
	return false
}

func (it *RuleSet) matchesRelationship(pkg *Package, graph *Graph) bool {
	if graph == nil {
		return false
	}
	for _, relation := range graph.Outgoing(pkg.SPDXID) {
		if it.relations[strings.ToUpper(relation.Type)] {
			return true
		}
	}
	return false
}
