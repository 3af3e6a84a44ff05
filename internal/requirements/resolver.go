package requirements

// Resolver answers requirement questions from a fixed set of tables. It holds
// no mutable state and is safe for concurrent use.
type Resolver struct {
	tables *Tables
}

func NewResolver(tables *Tables) *Resolver {
	return &Resolver{tables: tables}
}

// NewDefaultResolver builds a Resolver over the built-in tables.
func NewDefaultResolver() (*Resolver, error) {
	tables, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return NewResolver(tables), nil
}

func (r *Resolver) Tables() *Tables {
	return r.tables
}

// ApplicationInput is everything the intake flow knows about an applicant
// when it asks for the full document checklist.
type ApplicationInput struct {
	EntityType   EntityType          `json:"entityType" yaml:"entityType"`
	Jurisdiction string              `json:"jurisdiction" yaml:"jurisdiction"`
	Amount       float64             `json:"amount" yaml:"amount"`
	Instrument   Instrument          `json:"instrument" yaml:"instrument"`
	Owners       []CitizenshipStatus `json:"owners" yaml:"owners"`
}

type OwnerIdentityRequirements struct {
	CitizenshipStatus CitizenshipStatus `json:"citizenshipStatus" yaml:"citizenshipStatus"`
	Documents         []string          `json:"documents" yaml:"documents"`
}

type ApplicationRequirements struct {
	Entity RequirementProfile          `json:"entity" yaml:"entity"`
	Tax    TaxRequirementProfile       `json:"tax" yaml:"tax"`
	Owners []OwnerIdentityRequirements `json:"owners" yaml:"owners"`
}

// Resolve runs entity, tax and identity resolution for one application.
func (r *Resolver) Resolve(in ApplicationInput) (ApplicationRequirements, error) {
	entity, err := r.ResolveEntityRequirements(in.EntityType, in.Jurisdiction)
	if err != nil {
		return ApplicationRequirements{}, err
	}

	tax := ResolveTaxRequirements(TransactionProfile{
		Amount:     in.Amount,
		Instrument: in.Instrument,
		EntityType: in.EntityType,
	})

	owners := make([]OwnerIdentityRequirements, 0, len(in.Owners))
	for _, status := range in.Owners {
		owners = append(owners, OwnerIdentityRequirements{
			CitizenshipStatus: status,
			Documents:         r.ResolveIdentityDocuments(status),
		})
	}

	return ApplicationRequirements{Entity: entity, Tax: tax, Owners: owners}, nil
}
