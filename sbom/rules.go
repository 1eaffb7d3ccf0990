package sbom

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// RulesFile is the YAML form of a heuristic rule set. Entries extend the
// built-in defaults unless replace is set.
type RulesFile struct {
	Replace           bool     `yaml:"replace"`
	Tools             []string `yaml:"tools"`
	Prefixes          []string `yaml:"prefixes"`
	RelationshipTypes []string `yaml:"relationshipTypes"`
}

func ParseRuleSet(reader io.Reader) (*RuleSet, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	var rules RulesFile
	if err := yaml.UnmarshalStrict(content, &rules); err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}
	if rules.Replace {
		return NewRuleSet(rules.Tools, rules.Prefixes, rules.RelationshipTypes), nil
	}
	return NewRuleSet(
		concat(defaultTools, rules.Tools),
		concat(defaultPrefixes, rules.Prefixes),
		concat(defaultRelationshipTypes, rules.RelationshipTypes),
	), nil
}

// LoadRuleSet reads a rules file; an empty filename means the defaults.
func LoadRuleSet(filename string) (*RuleSet, error) {
	if len(filename) == 0 {
		return DefaultRuleSet(), nil
	}
	source, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	return ParseRuleSet(source)
}

func concat(left, right []string) []string {
	result := make([]string, 0, len(left)+len(right))
	result = append(result, left...)
	return append(result, right...)
}
