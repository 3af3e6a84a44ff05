package services

import (
	"errors"

	"github.com/BerylCAtieno/loan-document-verifier/internal/requirements"
	"github.com/BerylCAtieno/loan-document-verifier/internal/utils"
)

type EntityRequest struct {
	EntityType   string `json:"entityType"`
	Jurisdiction string `json:"jurisdiction"`
}

type TaxRequest struct {
	Amount     float64 `json:"amount"`
	Instrument string  `json:"instrument"`
	EntityType string  `json:"entityType"`
}

type ResolveRequest struct {
	EntityType   string   `json:"entityType"`
	Jurisdiction string   `json:"jurisdiction"`
	Amount       float64  `json:"amount"`
	Instrument   string   `json:"instrument"`
	Owners       []string `json:"owners"`
}

type RequirementService interface {
	EntityRequirements(req *EntityRequest) (*requirements.RequirementProfile, error)
	TaxRequirements(req *TaxRequest) (*requirements.TaxRequirementProfile, error)
	IdentityDocuments(status string) []string
	Resolve(req *ResolveRequest) (*requirements.ApplicationRequirements, error)
}

type requirementService struct {
	resolver *requirements.Resolver
	logger   *utils.Logger
}

func NewRequirementService(resolver *requirements.Resolver, logger *utils.Logger) RequirementService {
	return &requirementService{resolver: resolver, logger: logger}
}

func (s *requirementService) EntityRequirements(req *EntityRequest) (*requirements.RequirementProfile, error) {
	entityType, err := requirements.ParseEntityType(req.EntityType)
	if err != nil {
		return nil, requirementError(err)
	}

	profile, err := s.resolver.ResolveEntityRequirements(entityType, req.Jurisdiction)
	if err != nil {
		return nil, requirementError(err)
	}

	s.logger.Debug("Resolved entity requirements",
		"entity_type", entityType,
		"jurisdiction", req.Jurisdiction,
		"documents", len(profile.RequiredDocuments))

	return &profile, nil
}

func (s *requirementService) TaxRequirements(req *TaxRequest) (*requirements.TaxRequirementProfile, error) {
	tp, err := requirements.ParseTransactionProfile(req.Amount, req.Instrument, req.EntityType)
	if err != nil {
		return nil, requirementError(err)
	}

	profile := requirements.ResolveTaxRequirements(tp)
	return &profile, nil
}

// IdentityDocuments never fails; an unknown status has no documents.
func (s *requirementService) IdentityDocuments(status string) []string {
	return s.resolver.ResolveIdentityDocuments(requirements.ParseCitizenshipStatus(status))
}

func (s *requirementService) Resolve(req *ResolveRequest) (*requirements.ApplicationRequirements, error) {
	tp, err := requirements.ParseTransactionProfile(req.Amount, req.Instrument, req.EntityType)
	if err != nil {
		return nil, requirementError(err)
	}

	owners := make([]requirements.CitizenshipStatus, 0, len(req.Owners))
	for _, o := range req.Owners {
		owners = append(owners, requirements.ParseCitizenshipStatus(o))
	}

	result, err := s.resolver.Resolve(requirements.ApplicationInput{
		EntityType:   tp.EntityType,
		Jurisdiction: req.Jurisdiction,
		Amount:       tp.Amount,
		Instrument:   tp.Instrument,
		Owners:       owners,
	})
	if err != nil {
		return nil, requirementError(err)
	}

	return &result, nil
}

func requirementError(err error) error {
	switch {
	case errors.Is(err, requirements.ErrUnknownEntityType),
		errors.Is(err, requirements.ErrUnknownInstrument),
		errors.Is(err, requirements.ErrInvalidAmount):
		return utils.NewBadRequestError(err.Error())
	default:
		return utils.WrapInternalError("Failed to resolve requirements", err)
	}
}
