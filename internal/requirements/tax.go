package requirements

const (
	tierLargeAmount  = 1_000_000
	tierMediumAmount = 500_000
	tierSmallAmount  = 100_000

	transcriptThresholdWorkingCapital = 250_000
	auditThresholdRealEstate          = 500_000
)

// ResolveTaxRequirements builds a fresh tax profile in three passes: amount
// tier, instrument overlay, entity overlay. Later passes only raise year
// minimums, set flags or append to lists. Lists are not deduplicated.
func ResolveTaxRequirements(tp TransactionProfile) TaxRequirementProfile {
	profile := TaxRequirementProfile{
		BusinessTaxYears:    1,
		PersonalTaxYears:    1,
		SchedulesRequired:   []string{},
		AdditionalDocuments: []string{},
	}

	applyAmountTier(&profile, tp)
	applyInstrumentOverlay(&profile, tp)
	applyEntityOverlay(&profile, tp.EntityType)

	return profile
}

func applyAmountTier(p *TaxRequirementProfile, tp TransactionProfile) {
	switch {
	case tp.Amount >= tierLargeAmount:
		p.BusinessTaxYears = 3
		p.PersonalTaxRequired = true
		p.PersonalTaxYears = 2
		p.IRSTranscriptRequired = true
		p.AuditedFinancialsRequired = true
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule C", "Schedule E", "Schedule K-1")
	case tp.Amount >= tierMediumAmount:
		p.BusinessTaxYears = 2
		p.PersonalTaxRequired = true
		p.PersonalTaxYears = 2
		p.IRSTranscriptRequired = true
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule C", "Schedule E")
	case tp.Amount >= tierSmallAmount:
		p.BusinessTaxYears = 2
		p.PersonalTaxRequired = tp.EntityType == EntitySoleProprietorship || tp.EntityType == EntitySCorp
		p.PersonalTaxYears = 1
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule C")
	}
}

func applyInstrumentOverlay(p *TaxRequirementProfile, tp TransactionProfile) {
	switch tp.Instrument {
	case InstrumentSBALoan:
		p.BusinessTaxYears = max(p.BusinessTaxYears, 3)
		p.PersonalTaxRequired = true
		p.PersonalTaxYears = max(p.PersonalTaxYears, 3)
		p.IRSTranscriptRequired = true
		p.AdditionalDocuments = append(p.AdditionalDocuments, "SBA Form 912", "SBA Form 413")
	case InstrumentCommercialRealEstate, InstrumentResidentialRealEstate:
		p.BusinessTaxYears = max(p.BusinessTaxYears, 2)
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule E", "Form 4562")
		if tp.Amount >= auditThresholdRealEstate {
			p.AuditedFinancialsRequired = true
		}
	case InstrumentEquipmentFinance, InstrumentEquipmentLease:
		p.SchedulesRequired = append(p.SchedulesRequired, "Form 4562", "Section 179 Election")
	case InstrumentWorkingCapital, InstrumentLineOfCredit:
		p.BusinessTaxYears = max(p.BusinessTaxYears, 2)
		p.IRSTranscriptRequired = p.IRSTranscriptRequired || tp.Amount >= transcriptThresholdWorkingCapital
	}
}

func applyEntityOverlay(p *TaxRequirementProfile, e EntityType) {
	switch e {
	case EntitySoleProprietorship:
		p.PersonalTaxRequired = true
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule C", "Schedule SE")
	case EntitySCorp:
		p.PersonalTaxRequired = true
		p.SchedulesRequired = append(p.SchedulesRequired, "Schedule E", "Form 1120S", "Schedule K-1")
	case EntityPartnership, EntityLLC:
		p.SchedulesRequired = append(p.SchedulesRequired, "Form 1065", "Schedule K-1")
	case EntityCCorp:
		p.SchedulesRequired = append(p.SchedulesRequired, "Form 1120")
	}
}
