package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/loan-document-verifier/internal/requirements"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

func newRequirementService(t *testing.T) RequirementService {
	t.Helper()
	resolver, err := requirements.NewDefaultResolver()
	require.NoError(t, err)
	return NewRequirementService(resolver, utils.NewDiscardLogger())
}

func TestRequirementServiceErrors(t *testing.T) {
	svc := newRequirementService(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"unknown entity type", func() error {
			_, err := svc.EntityRequirements(&EntityRequest{EntityType: "guild"})
			return err
		}},
		{"negative amount", func() error {
			_, err := svc.TaxRequirements(&TaxRequest{Amount: -1, EntityType: "llc"})
			return err
		}},
		{"unknown instrument", func() error {
			_, err := svc.TaxRequirements(&TaxRequest{Instrument: "crypto", EntityType: "llc"})
			return err
		}},
		{"resolve with unknown entity type", func() error {
			_, err := svc.Resolve(&ResolveRequest{EntityType: "guild"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, 400, utils.StatusCode(err))
		})
	}
}

func TestRequirementServiceEntity(t *testing.T) {
	svc := newRequirementService(t)

	profile, err := svc.EntityRequirements(&EntityRequest{EntityType: " LLC ", Jurisdiction: "de"})
	require.NoError(t, err)
	assert.Equal(t, "Delaware Certificate of Formation", profile.PrimaryDocumentType)
}

func TestRequirementServiceResolve(t *testing.T) {
	svc := newRequirementService(t)

	result, err := svc.Resolve(&ResolveRequest{
		EntityType: "partnership",
		Amount:     600_000,
		Instrument: "commercial_real_estate",
		Owners:     []string{"US_Citizen", "martian"},
	})
	require.NoError(t, err)

	assert.True(t, result.Tax.AuditedFinancialsRequired)
	require.Len(t, result.Owners, 2)
	assert.Equal(t, requirements.CitizenUS, result.Owners[0].CitizenshipStatus)
	assert.NotEmpty(t, result.Owners[0].Documents)
	assert.Empty(t, result.Owners[1].Documents)
}

func TestRequirementServiceIdentity(t *testing.T) {
	svc := newRequirementService(t)

	assert.NotEmpty(t, svc.IdentityDocuments("permanent_resident"))
	docs := svc.IdentityDocuments("unknown")
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
