package requirements

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	resolver, err := NewDefaultResolver()
	s.Require().NoError(err)
	s.resolver = resolver
}

func (s *ResolverSuite) TestEntityRequirements() {
	s.Run("delaware llc merges base and overlay documents", func() {
		profile, err := s.resolver.ResolveEntityRequirements(EntityLLC, "Delaware")
		s.Require().NoError(err)

		s.Equal("Delaware Certificate of Formation", profile.PrimaryDocumentType)
		s.Contains(profile.RequiredDocuments, "Articles of Organization")
		s.Contains(profile.RequiredDocuments, "Operating Agreement")
		s.Contains(profile.RequiredDocuments, "Delaware Certificate of Formation")
		s.Contains(profile.RequiredDocuments, "Delaware LLC Operating Agreement")
		s.NotEmpty(profile.Regulations)
		s.NotEmpty(profile.FilingFees)
		s.NotEmpty(profile.RenewalRequirements)
		s.NotEmpty(profile.SpecialNotes)
	})

	s.Run("overlay documents follow base documents", func() {
		base, ok := s.resolver.Tables().BaseDocuments(EntityLLC)
		s.Require().True(ok)
		overlay, ok := s.resolver.Tables().Overlay("Delaware", EntityLLC)
		s.Require().True(ok)

		profile, err := s.resolver.ResolveEntityRequirements(EntityLLC, "Delaware")
		s.Require().NoError(err)

		s.Equal(append(base, overlay.Documents...), profile.RequiredDocuments)
	})

	s.Run("duplicates between base and overlay are kept", func() {
		profile, err := s.resolver.ResolveEntityRequirements(EntityPartnership, "New York")
		s.Require().NoError(err)

		count := 0
		for _, doc := range profile.RequiredDocuments {
			if doc == "Partnership Agreement" {
				count++
			}
		}
		s.Equal(2, count)
		s.Len(profile.UniqueDocuments(), len(profile.RequiredDocuments)-1)
	})

	s.Run("unknown jurisdiction falls back to base documents", func() {
		base, _ := s.resolver.Tables().BaseDocuments(EntityCCorp)

		profile, err := s.resolver.ResolveEntityRequirements(EntityCCorp, "Atlantis")
		s.Require().NoError(err)

		s.Equal(base, profile.RequiredDocuments)
		s.Equal("Articles of Incorporation", profile.PrimaryDocumentType)
		s.Empty(profile.Regulations)
		s.NotNil(profile.Regulations)
		s.Empty(profile.FilingFees)
		s.Empty(profile.SpecialNotes)
	})

	s.Run("empty jurisdiction falls back to base documents", func() {
		base, _ := s.resolver.Tables().BaseDocuments(EntityTrustEstate)

		profile, err := s.resolver.ResolveEntityRequirements(EntityTrustEstate, "")
		s.Require().NoError(err)

		s.Equal(base, profile.RequiredDocuments)
		s.Equal("Trust Agreement or Trust Certificate", profile.PrimaryDocumentType)
	})

	s.Run("jurisdiction without overlay for the entity type", func() {
		base, _ := s.resolver.Tables().BaseDocuments(EntityCooperative)

		profile, err := s.resolver.ResolveEntityRequirements(EntityCooperative, "Delaware")
		s.Require().NoError(err)

		s.Equal(base, profile.RequiredDocuments)
		s.Equal("Business Formation Document", profile.PrimaryDocumentType)
	})

	s.Run("state codes and case are accepted", func() {
		byName, err := s.resolver.ResolveEntityRequirements(EntityLLC, "Delaware")
		s.Require().NoError(err)
		byCode, err := s.resolver.ResolveEntityRequirements(EntityLLC, "de")
		s.Require().NoError(err)
		byLower, err := s.resolver.ResolveEntityRequirements(EntityLLC, "  delaware ")
		s.Require().NoError(err)

		s.Equal(byName, byCode)
		s.Equal(byName, byLower)
	})

	s.Run("unknown entity type fails without inventing documents", func() {
		profile, err := s.resolver.ResolveEntityRequirements(EntityType("joint_venture"), "Delaware")
		s.Require().ErrorIs(err, ErrUnknownEntityType)
		s.Empty(profile.RequiredDocuments)
		s.Empty(profile.PrimaryDocumentType)
	})

	s.Run("repeated calls return equal, independent results", func() {
		first, err := s.resolver.ResolveEntityRequirements(EntityLLC, "California")
		s.Require().NoError(err)
		first.RequiredDocuments[0] = "mutated"

		second, err := s.resolver.ResolveEntityRequirements(EntityLLC, "California")
		s.Require().NoError(err)
		s.Equal("Articles of Organization", second.RequiredDocuments[0])
	})
}

func (s *ResolverSuite) TestPrimaryDocumentType() {
	cases := []struct {
		entity       EntityType
		jurisdiction string
		expected     string
	}{
		{EntityLLC, "Delaware", "Delaware Certificate of Formation"},
		{EntityCCorp, "Delaware", "Delaware Certificate of Incorporation"},
		{EntitySCorp, "DE", "Delaware Certificate of Incorporation"},
		{EntityPartnership, "Delaware", "Delaware Certificate of Limited Partnership"},
		{EntityNonProfit, "Delaware", "Delaware Certificate of Incorporation (Nonstock)"},
		{EntityTrustEstate, "Delaware", "Trust Agreement or Trust Certificate"},
		{EntitySoleProprietorship, "Delaware", "Business Formation Document"},
		{EntityLLC, "Texas", "Articles of Organization"},
		{EntityCCorp, "California", "Articles of Incorporation"},
		{EntitySCorp, "", "Articles of Incorporation"},
		{EntityPartnership, "Ohio", "Partnership Agreement"},
		{EntityNonProfit, "New York", "501(c)(3) Determination Letter"},
		{EntityCooperative, "Florida", "Business Formation Document"},
	}

	for _, tc := range cases {
		s.Run(string(tc.entity)+"/"+tc.jurisdiction, func() {
			s.Equal(tc.expected, s.resolver.PrimaryDocumentType(tc.entity, tc.jurisdiction))
		})
	}
}

func (s *ResolverSuite) TestIdentityDocuments() {
	s.Run("us citizen lists primary, secondary then note", func() {
		docs := s.resolver.ResolveIdentityDocuments(CitizenUS)

		s.Equal([]string{
			"Primary: U.S. Passport",
			"Primary: State-Issued Driver's License",
			"Primary: State-Issued Identification Card",
			"Secondary: Birth Certificate",
			"Secondary: Social Security Card",
			"Note: One unexpired primary document is required; secondary documents supplement it.",
		}, docs)
	})

	s.Run("temporary visa holder appends visa additions in visa order", func() {
		docs := s.resolver.ResolveIdentityDocuments(CitizenTemporaryVisa)

		noteIdx := -1
		for i, line := range docs {
			if len(line) > 6 && line[:6] == "Note: " {
				noteIdx = i
			}
		}
		s.Require().NotEqual(-1, noteIdx)

		visaLines := docs[noteIdx+1:]
		s.Equal([]string{
			"- E-2: Treaty investor visa and evidence of the qualifying investment",
			"- F-1: Form I-20 and Employment Authorization Document if employed",
			"- H-1B: Form I-797 Approval Notice and current employer verification letter",
			"- L-1: Form I-797 Approval Notice and intracompany transfer letter",
			"- O-1: Form I-797 Approval Notice",
		}, visaLines)
	})

	s.Run("visa additions are only listed for temporary visa holders", func() {
		for _, status := range CitizenshipStatuses {
			if status == CitizenTemporaryVisa {
				continue
			}
			for _, line := range s.resolver.ResolveIdentityDocuments(status) {
				s.NotRegexp(`^- `, line, "status %s", status)
			}
		}
	})

	s.Run("every known status resolves to at least a primary and a note", func() {
		for _, status := range CitizenshipStatuses {
			docs := s.resolver.ResolveIdentityDocuments(status)
			s.GreaterOrEqual(len(docs), 2, "status %s", status)
			s.Regexp(`^Primary: `, docs[0])
		}
	})

	s.Run("unknown status yields an empty list", func() {
		docs := s.resolver.ResolveIdentityDocuments(CitizenshipStatus("martian"))
		s.NotNil(docs)
		s.Empty(docs)
	})
}

func (s *ResolverSuite) TestResolveApplication() {
	s.Run("bundles entity, tax and owner requirements", func() {
		result, err := s.resolver.Resolve(ApplicationInput{
			EntityType:   EntityLLC,
			Jurisdiction: "Delaware",
			Amount:       250_000,
			Instrument:   InstrumentWorkingCapital,
			Owners:       []CitizenshipStatus{CitizenUS, CitizenshipStatus("unknown")},
		})
		s.Require().NoError(err)

		s.Equal("Delaware Certificate of Formation", result.Entity.PrimaryDocumentType)
		s.True(result.Tax.IRSTranscriptRequired)
		s.Require().Len(result.Owners, 2)
		s.NotEmpty(result.Owners[0].Documents)
		s.Empty(result.Owners[1].Documents)
	})

	s.Run("propagates unknown entity type", func() {
		_, err := s.resolver.Resolve(ApplicationInput{EntityType: "guild"})
		s.ErrorIs(err, ErrUnknownEntityType)
	})
}
