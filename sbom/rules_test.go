package sbom_test

import (
	"os"
	"strings"
	"testing"

	"github.com/joshyorko/depclean/hamlet"
	"github.com/joshyorko/depclean/sbom"
)

func TestDefaultRulesRecognizeTooling(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	rules := sbom.DefaultRuleSet()
	for _, name := range []string{"pytest", "PyTest", "pytest-cov", "@types/node", "@jest/core", "eslint-plugin-react", "mock", "django-pytest", "github.com/stretchr/testify", "@vitest/ui", "ts_jest"} {
		must_be.True(rules.MatchesName(name))
	}
	for _, name := range []string{"requests", "mockingbird", "hammock", "", "urllib3", "blackbird", "react"} {
		wont_be.True(rules.MatchesName(name))
	}
}

func TestVersionedAndMavenNamesAreRecognized(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	rules := sbom.DefaultRuleSet()
	for _, name := range []string{"github.com/onsi/ginkgo/v2", "github.com/onsi/gomega", "junit:junit", "org.mockito:mockito-core", "org.junit.jupiter:junit-jupiter-api"} {
		must_be.True(rules.MatchesName(name))
	}
	for _, name := range []string{"github.com/acme/service/v2", "com.example:app", "org.mockito.extra:widgets", "github.com/acme/v2"} {
		wont_be.True(rules.MatchesName(name))
	}
}

func TestRulesFileExtendsDefaults(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	rules, err := sbom.LoadRuleSet("testdata/rules.yaml")
	must_be.Nil(err)
	must_be.True(rules.MatchesName("house-linter"))
	must_be.True(rules.MatchesName("internal-test-utils"))
	must_be.True(rules.MatchesName("pytest"))
	wont_be.True(rules.MatchesName("internal-core"))
}

func TestRulesFileCanReplaceDefaults(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	rules, err := sbom.ParseRuleSet(strings.NewReader("replace: true\ntools: [house-linter]\n"))
	must_be.Nil(err)
	must_be.True(rules.MatchesName("house-linter"))
	wont_be.True(rules.MatchesName("pytest"))
}

func TestRulesFileIsStrict(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	_, err := sbom.ParseRuleSet(strings.NewReader("toolz: [typo]\n"))
	wont_be.Nil(err)

	rules, err := sbom.LoadRuleSet("")
	must_be.Nil(err)
	must_be.True(rules.MatchesName("jest"))

	_, err = sbom.LoadRuleSet("testdata/missing.yaml")
	must_be.True(os.IsNotExist(err))
}

func TestRemovalListSkipsNoise(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	list, err := sbom.LoadRemovalList("testdata/removals.txt")
	must_be.Nil(err)
	must_be.Equal([]string{"pytest", "requests"}, list.Names.Sorted())
	must_be.Equal(1, list.Comments)
	must_be.Equal(1, list.Blanks)
	must_be.Equal([]string{"not a name"}, list.Skipped)
	wont_be.True(list.Names.Has("# packages we never ship"))
}

func TestMissingRemovalListIsEmpty(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	list, err := sbom.LoadRemovalList("testdata/does-not-exist.txt")
	must_be.Nil(err)
	must_be.Length(list.Names, 0)

	list, err = sbom.ParseRemovalList(strings.NewReader("\n\n# only comments\n"))
	must_be.Nil(err)
	must_be.Length(list.Names, 0)
	must_be.Equal(2, list.Blanks)
}

func TestWrittenRemovalListReadsBack(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	sink := &strings.Builder{}
	must_be.Nil(sbom.WriteRemovalList(sink, "reviewed\nby hand", sbom.NewNameSet("pytest", "@types/node", "black")))
	must_be.Equal("# reviewed\n# by hand\n@types/node\nblack\npytest\n", sink.String())

	list, err := sbom.ParseRemovalList(strings.NewReader(sink.String()))
	must_be.Nil(err)
	must_be.Equal(2, list.Comments)
	must_be.Equal([]string{"reviewed", "by hand"}, list.Notes)
	must_be.Equal([]string{"@types/node", "black", "pytest"}, list.Names.Sorted())
}
