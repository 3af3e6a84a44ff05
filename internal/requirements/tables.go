package requirements

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// StateOverlay is the additive set of documents and rules a jurisdiction
// layers on top of an entity type's base documents.
type StateOverlay struct {
	Documents           []string `yaml:"documents" json:"documents"`
	Regulations         []string `yaml:"regulations" json:"regulations"`
	FilingFees          string   `yaml:"filingFees" json:"filingFees,omitempty"`
	RenewalRequirements string   `yaml:"renewalRequirements" json:"renewalRequirements,omitempty"`
	SpecialNotes        string   `yaml:"specialNotes" json:"specialNotes,omitempty"`
}

// IdentityDocSpec lists the identity documents accepted for a citizenship status.
type IdentityDocSpec struct {
	Primary       []string          `yaml:"primary" json:"primary"`
	Secondary     []string          `yaml:"secondary" json:"secondary,omitempty"`
	Note          string            `yaml:"note" json:"note"`
	VisaAdditions map[string]string `yaml:"visaAdditions" json:"visaAdditions,omitempty"`
}

type stateEntry struct {
	Code     string                      `yaml:"code"`
	Overlays map[EntityType]StateOverlay `yaml:"overlays"`
}

type tablesFile struct {
	Entities map[EntityType][]string               `yaml:"entities"`
	States   map[string]stateEntry                 `yaml:"states"`
	Identity map[CitizenshipStatus]IdentityDocSpec `yaml:"identity"`
}

// Tables holds the read-only requirement reference data. A Tables value is
// never modified after LoadTables returns; accessors hand out copies.
type Tables struct {
	entities   map[EntityType][]string
	states     map[string]stateEntry
	stateIndex map[string]string
	identity   map[CitizenshipStatus]IdentityDocSpec
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return LoadTables(bytes.NewReader(defaultTablesYAML))
})

// DefaultTables returns the built-in tables, decoded on first use.
func DefaultTables() (*Tables, error) {
	return defaultTables()
}

// LoadTables decodes and validates a YAML requirement table document.
func LoadTables(r io.Reader) (*Tables, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file tablesFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode requirement tables: %w", err)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}

	t := &Tables{
		entities:   file.Entities,
		states:     file.States,
		stateIndex: make(map[string]string, len(file.States)*2),
		identity:   file.Identity,
	}
	for name, entry := range file.States {
		t.stateIndex[strings.ToLower(name)] = name
		if entry.Code != "" {
			t.stateIndex[strings.ToLower(entry.Code)] = name
		}
	}

	return t, nil
}

// LoadTablesFile reads tables from a YAML file. An empty path returns the
// built-in tables.
func LoadTablesFile(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open requirement tables: %w", err)
	}
	defer f.Close()
	return LoadTables(f)
}

func (f *tablesFile) validate() error {
	for _, e := range EntityTypes {
		if len(f.Entities[e]) == 0 {
			return fmt.Errorf("requirement tables: no base documents for entity type %q", e)
		}
	}
	for e := range f.Entities {
		if !e.Valid() {
			return fmt.Errorf("requirement tables: %w: %q", ErrUnknownEntityType, e)
		}
	}

	codes := make(map[string]string, len(f.States))
	for name, entry := range f.States {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("requirement tables: empty state name")
		}
		if entry.Code != "" {
			code := strings.ToLower(entry.Code)
			if other, dup := codes[code]; dup {
				return fmt.Errorf("requirement tables: state code %q used by both %q and %q", entry.Code, other, name)
			}
			codes[code] = name
		}
		for e := range entry.Overlays {
			if !e.Valid() {
				return fmt.Errorf("requirement tables: state %q: %w: %q", name, ErrUnknownEntityType, e)
			}
		}
	}

	for status, spec := range f.Identity {
		if !status.Known() {
			return fmt.Errorf("requirement tables: unknown citizenship status %q", status)
		}
		if len(spec.Primary) == 0 {
			return fmt.Errorf("requirement tables: citizenship status %q has no primary documents", status)
		}
	}

	return nil
}

// BaseDocuments returns the documents every business of the given type must provide.
func (t *Tables) BaseDocuments(e EntityType) ([]string, bool) {
	docs, ok := t.entities[e]
	if !ok {
		return nil, false
	}
	return cloneStrings(docs), true
}

// CanonicalJurisdiction resolves a state name or two-letter code to the
// table's spelling of that state.
func (t *Tables) CanonicalJurisdiction(jurisdiction string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(jurisdiction))
	if key == "" {
		return "", false
	}
	name, ok := t.stateIndex[key]
	return name, ok
}

// Overlay returns the jurisdiction's overlay for an entity type, if any.
func (t *Tables) Overlay(jurisdiction string, e EntityType) (StateOverlay, bool) {
	name, ok := t.CanonicalJurisdiction(jurisdiction)
	if !ok {
		return StateOverlay{}, false
	}
	overlay, ok := t.states[name].Overlays[e]
	if !ok {
		return StateOverlay{}, false
	}
	return StateOverlay{
		Documents:           cloneStrings(overlay.Documents),
		Regulations:         cloneStrings(overlay.Regulations),
		FilingFees:          overlay.FilingFees,
		RenewalRequirements: overlay.RenewalRequirements,
		SpecialNotes:        overlay.SpecialNotes,
	}, true
}

// Jurisdictions lists the states that carry overlays, sorted by name.
func (t *Tables) Jurisdictions() []string {
	names := make([]string, 0, len(t.states))
	for name := range t.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identity returns the identity document spec for a citizenship status.
func (t *Tables) Identity(status CitizenshipStatus) (IdentityDocSpec, bool) {
	spec, ok := t.identity[status]
	if !ok {
		return IdentityDocSpec{}, false
	}
	out := IdentityDocSpec{
		Primary:   cloneStrings(spec.Primary),
		Secondary: cloneStrings(spec.Secondary),
		Note:      spec.Note,
	}
	if spec.VisaAdditions != nil {
		out.VisaAdditions = make(map[string]string, len(spec.VisaAdditions))
		for k, v := range spec.VisaAdditions {
			out.VisaAdditions[k] = v
		}
	}
	return out, true
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
