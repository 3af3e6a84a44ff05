package requirements

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrUnknownInstrument = errors.New("unknown financial instrument")
	ErrInvalidAmount     = errors.New("transaction amount must be a finite, non-negative number")
)

// EntityType is the legal form of the applying business.
type EntityType string

const (
	EntitySoleProprietorship EntityType = "sole_proprietorship"
	EntityPartnership        EntityType = "partnership"
	EntityLLC                EntityType = "llc"
	EntityCCorp              EntityType = "c_corp"
	EntitySCorp              EntityType = "s_corp"
	EntityNonProfit          EntityType = "non_profit"
	EntityTrustEstate        EntityType = "trust_estate"
	EntityCooperative        EntityType = "cooperative"
)

// EntityTypes lists every supported legal form.
var EntityTypes = []EntityType{
	EntitySoleProprietorship,
	EntityPartnership,
	EntityLLC,
	EntityCCorp,
	EntitySCorp,
	EntityNonProfit,
	EntityTrustEstate,
	EntityCooperative,
}

func (e EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if e == known {
			return true
		}
	}
	return false
}

func ParseEntityType(s string) (EntityType, error) {
	e := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
	return e, nil
}

// CitizenshipStatus of a beneficial owner. Unknown values are allowed and
// resolve to no identity documents.
type CitizenshipStatus string

const (
	CitizenUS                CitizenshipStatus = "us_citizen"
	CitizenPermanentResident CitizenshipStatus = "permanent_resident"
	CitizenTemporaryVisa     CitizenshipStatus = "temporary_visa_holder"
	CitizenRefugeeAsylee     CitizenshipStatus = "refugee_asylee"
	CitizenDualUSForeign     CitizenshipStatus = "dual_citizen_us_foreign"
	CitizenOtherNonResident  CitizenshipStatus = "other_non_resident_alien"
)

var CitizenshipStatuses = []CitizenshipStatus{
	CitizenUS,
	CitizenPermanentResident,
	CitizenTemporaryVisa,
	CitizenRefugeeAsylee,
	CitizenDualUSForeign,
	CitizenOtherNonResident,
}

func (c CitizenshipStatus) Known() bool {
	for _, known := range CitizenshipStatuses {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCitizenshipStatus(s string) CitizenshipStatus {
	return CitizenshipStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Instrument is the financial product the applicant is requesting.
type Instrument string

const (
	InstrumentSBALoan               Instrument = "sba_loan"
	InstrumentCommercialRealEstate  Instrument = "commercial_real_estate"
	InstrumentResidentialRealEstate Instrument = "residential_real_estate"
	InstrumentEquipmentFinance      Instrument = "equipment_finance"
	InstrumentEquipmentLease        Instrument = "equipment_lease"
	InstrumentWorkingCapital        Instrument = "working_capital"
	InstrumentLineOfCredit          Instrument = "line_of_credit"
	InstrumentTermLoan              Instrument = "term_loan"
	InstrumentInvoiceFactoring      Instrument = "invoice_factoring"
	InstrumentMerchantCashAdvance   Instrument = "merchant_cash_advance"
	InstrumentOther                 Instrument = "other"
)

var Instruments = []Instrument{
	InstrumentSBALoan,
	InstrumentCommercialRealEstate,
	InstrumentResidentialRealEstate,
	InstrumentEquipmentFinance,
	InstrumentEquipmentLease,
	InstrumentWorkingCapital,
	InstrumentLineOfCredit,
	InstrumentTermLoan,
	InstrumentInvoiceFactoring,
	InstrumentMerchantCashAdvance,
	InstrumentOther,
}

func (i Instrument) Valid() bool {
	for _, known := range Instruments {
		if i == known {
			return true
		}
	}
	return false
}

// ParseInstrument maps an empty value to InstrumentOther.
func ParseInstrument(s string) (Instrument, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return InstrumentOther, nil
	}
	i := Instrument(s)
	if !i.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, s)
	}
	return i, nil
}

// TransactionProfile is the input to tax requirement resolution.
type TransactionProfile struct {
	Amount     float64    `json:"amount" yaml:"amount"`
	Instrument Instrument `json:"instrument" yaml:"instrument"`
	EntityType EntityType `json:"entityType" yaml:"entityType"`
}

// ParseTransactionProfile validates raw inputs into a TransactionProfile.
func ParseTransactionProfile(amount float64, instrument, entityType string) (TransactionProfile, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return TransactionProfile{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	inst, err := ParseInstrument(instrument)
	if err != nil {
		return TransactionProfile{}, err
	}
	et, err := ParseEntityType(entityType)
	if err != nil {
		return TransactionProfile{}, err
	}
	return TransactionProfile{Amount: amount, Instrument: inst, EntityType: et}, nil
}

// RequirementProfile is the resolved entity/jurisdiction document set.
type RequirementProfile struct {
	PrimaryDocumentType string   `json:"primaryDocumentType" yaml:"primaryDocumentType"`
	RequiredDocuments   []string `json:"requiredDocuments" yaml:"requiredDocuments"`
	Regulations         []string `json:"regulations" yaml:"regulations"`
	FilingFees          string   `json:"filingFees,omitempty" yaml:"filingFees,omitempty"`
	RenewalRequirements string   `json:"renewalRequirements,omitempty" yaml:"renewalRequirements,omitempty"`
	SpecialNotes        string   `json:"specialNotes,omitempty" yaml:"specialNotes,omitempty"`
}

// UniqueDocuments returns RequiredDocuments without repeated entries, keeping
// first occurrences. RequiredDocuments itself is left untouched.
func (p RequirementProfile) UniqueDocuments() []string {
	seen := make(map[string]struct{}, len(p.RequiredDocuments))
	result := make([]string, 0, len(p.RequiredDocuments))
	for _, doc := range p.RequiredDocuments {
		if _, ok := seen[doc]; ok {
			continue
		}
		seen[doc] = struct{}{}
		result = append(result, doc)
	}
	return result
}

// TaxRequirementProfile describes which tax filings an application needs.
type TaxRequirementProfile struct {
	BusinessTaxYears          int      `json:"businessTaxYears" yaml:"businessTaxYears"`
	PersonalTaxRequired       bool     `json:"personalTaxRequired" yaml:"personalTaxRequired"`
	PersonalTaxYears          int      `json:"personalTaxYears" yaml:"personalTaxYears"`
	IRSTranscriptRequired     bool     `json:"irsTranscriptRequired" yaml:"irsTranscriptRequired"`
	AuditedFinancialsRequired bool     `json:"auditedFinancialsRequired" yaml:"auditedFinancialsRequired"`
	SchedulesRequired         []string `json:"schedulesRequired" yaml:"schedulesRequired"`
	AdditionalDocuments       []string `json:"additionalDocuments" yaml:"additionalDocuments"`
}
