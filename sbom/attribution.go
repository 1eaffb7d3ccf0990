package sbom

import (
	"strings"
	"time"

	"github.com/spdx/tools-golang/spdx/v2/common"
)

const (
	CreatorOrganization = "Organization"
	CreatorPerson       = "Person"
	CreatorTool         = "Tool"

	// CreatedLayout is the SPDX creation timestamp format.
	CreatedLayout = "2006-01-02T15:04:05Z"
)

// ResolveAttribution computes the creation info of an edited document.
// Organization and person are resolved independently, call-site override
// first, then environment, then the original document. A value missing
// everywhere is left out. Other creators keep their order, and the
// timestamp is always set to now.
func ResolveAttribution(original CreationInfo, override AttributionOverride, env EnvAttribution, now time.Time) CreationInfo {
	organization, person, others := splitCreators(original.Creators)

	organization = firstOf(override.Organization, env.Organization, organization)
	person = firstOf(override.Person, env.Person, person)

	creators := make([]string, 0, len(others)+2)
	if len(organization) > 0 {
		creators = append(creators, CreatorOrganization+": "+organization)
	}
	if len(person) > 0 {
		creators = append(creators, CreatorPerson+": "+person)
	}
	creators = append(creators, others...)

	return CreationInfo{
		Created:            now.UTC().Format(CreatedLayout),
		Creators:           creators,
		LicenseListVersion: original.LicenseListVersion,
		Extra:              original.Extra.clone(),
	}
}

// splitCreators picks the first organization and person out of the creator
// list and returns everything else untouched.
func splitCreators(creators []string) (organization, person string, others []string) {
	others = make([]string, 0, len(creators))
	for _, text := range creators {
		creator, ok := parseCreator(text)
		switch {
		case ok && creator.CreatorType == CreatorOrganization:
			if len(organization) == 0 {
				organization = creator.Creator
			}
		case ok && creator.CreatorType == CreatorPerson:
			if len(person) == 0 {
				person = creator.Creator
			}
		default:
			others = append(others, text)
		}
	}
	return organization, person, others
}

func parseCreator(text string) (common.Creator, bool) {
	var creator common.Creator
	if err := creator.UnmarshalJSON([]byte(`"` + text + `"`)); err != nil {
		return creator, false
	}
	creator.CreatorType = strings.TrimSpace(creator.CreatorType)
	creator.Creator = strings.TrimSpace(creator.Creator)
	return creator, len(creator.Creator) > 0
}

func firstOf(candidates ...string) string {
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
