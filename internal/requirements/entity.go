package requirements

import (
	"fmt"
	"strings"
)

const delaware = "Delaware"

var delawarePrimaryDocuments = map[EntityType]string{
	EntityLLC:         "Delaware Certificate of Formation",
	EntityCCorp:       "Delaware Certificate of Incorporation",
	EntitySCorp:       "Delaware Certificate of Incorporation",
	EntityPartnership: "Delaware Certificate of Limited Partnership",
	EntityNonProfit:   "Delaware Certificate of Incorporation (Nonstock)",
}

const defaultPrimaryDocument = "Business Formation Document"

// ResolveEntityRequirements merges the entity type's base documents with the
// jurisdiction's overlay. An unknown or empty jurisdiction is not an error:
// the profile then carries base documents only.
func (r *Resolver) ResolveEntityRequirements(entityType EntityType, jurisdiction string) (RequirementProfile, error) {
	base, ok := r.tables.BaseDocuments(entityType)
	if !ok {
		return RequirementProfile{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	profile := RequirementProfile{
		PrimaryDocumentType: r.PrimaryDocumentType(entityType, jurisdiction),
		RequiredDocuments:   base,
		Regulations:         []string{},
	}

	overlay, ok := r.tables.Overlay(jurisdiction, entityType)
	if !ok {
		return profile, nil
	}

	// Overlay documents follow base documents; repeats are kept.
	profile.RequiredDocuments = append(profile.RequiredDocuments, overlay.Documents...)
	if overlay.Regulations != nil {
		profile.Regulations = overlay.Regulations
	}
	profile.FilingFees = overlay.FilingFees
	profile.RenewalRequirements = overlay.RenewalRequirements
	profile.SpecialNotes = overlay.SpecialNotes

	return profile, nil
}

// PrimaryDocumentType names the single authoritative formation document for
// an entity type in a jurisdiction.
func (r *Resolver) PrimaryDocumentType(entityType EntityType, jurisdiction string) string {
	name, _ := r.tables.CanonicalJurisdiction(jurisdiction)
	if strings.EqualFold(name, delaware) {
		if doc, ok := delawarePrimaryDocuments[entityType]; ok {
			return doc
		}
	}

	switch entityType {
	case EntityLLC:
		return "Articles of Organization"
	case EntityCCorp, EntitySCorp:
		return "Articles of Incorporation"
	case EntityPartnership:
		return "Partnership Agreement"
	case EntityTrustEstate:
		return "Trust Agreement or Trust Certificate"
	case EntityNonProfit:
		return "501(c)(3) Determination Letter"
	default:
		return defaultPrimaryDocument
	}
}
