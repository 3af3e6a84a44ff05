package requirements

import (
	"fmt"
	"sort"
)

// ResolveIdentityDocuments lists the identity documents a beneficial owner
// with the given citizenship status must present, as display lines.
// Unknown statuses yield an empty list.
func (r *Resolver) ResolveIdentityDocuments(status CitizenshipStatus) []string {
	spec, ok := r.tables.Identity(status)
	if !ok {
		return []string{}
	}

	lines := make([]string, 0, len(spec.Primary)+len(spec.Secondary)+1+len(spec.VisaAdditions))
	for _, doc := range spec.Primary {
		lines = append(lines, "Primary: "+doc)
	}
	for _, doc := range spec.Secondary {
		lines = append(lines, "Secondary: "+doc)
	}
	lines = append(lines, "Note: "+spec.Note)

	if status == CitizenTemporaryVisa {
		visaTypes := make([]string, 0, len(spec.VisaAdditions))
		for visaType := range spec.VisaAdditions {
			visaTypes = append(visaTypes, visaType)
		}
		sort.Strings(visaTypes)
		for _, visaType := range visaTypes {
			lines = append(lines, fmt.Sprintf("- %s: %s", visaType, spec.VisaAdditions[visaType]))
		}
	}

	return lines
}
