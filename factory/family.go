/*
Package factory converts family files into engine input.

PURPOSE:
  A family file describes one estate: the owner's gender, the estate value
  and the list of relatives. The factory parses it (YAML or JSON), checks
  it, and produces a Family ready for faraid.Calculate. Demo scenarios and
  the CLI both go through here.

SCHEMA (YAML shown, JSON uses the same keys):
  owner_gender: male
  estate_value: 100000
  heirs:
    - id: h1
      full_name: Aisyah
      relationship: wife
      ic: 850101-14-1234   # optional

VALIDATION:
  Every problem in the file is reported at once (multierr), not just the
  first. Unknown relationship labels are NOT errors: the engine excludes
  those heirs and says so.

USAGE:
  f := factory.NewFamilyFactory()
  family, err := f.ParseFile("family.yaml")
  results := faraid.Calculate(family.Heirs, family.EstateValue, family.OwnerGender)
*/
package factory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amanah/faraid-engine/faraid"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// FamilyFile is the on-disk representation of an estate.
type FamilyFile struct {
	OwnerGender string     `json:"owner_gender" yaml:"owner_gender"`
	EstateValue *Amount    `json:"estate_value,omitempty" yaml:"estate_value,omitempty"`
	Heirs       []HeirFile `json:"heirs" yaml:"heirs"`
}

// HeirFile is one relative in a family file.
type HeirFile struct {
	ID           string `json:"id" yaml:"id"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Relationship string `json:"relationship" yaml:"relationship"`
	IC           string `json:"ic,omitempty" yaml:"ic,omitempty"`
}

// Amount is a decimal that accepts numbers or strings in both formats.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{Decimal: d}
}

func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("estate_value: expected a number, got %s", kindName(n.Kind))
	}
	d, err := decimal.NewFromString(strings.TrimSpace(n.Value))
	if err != nil {
		return fmt.Errorf("estate_value: %w", err)
	}
	a.Decimal = d
	return nil
}

func (a Amount) MarshalYAML() (interface{}, error) {
	return a.Decimal.String(), nil
}

// Family is a validated family file.
type Family struct {
	OwnerGender faraid.Gender
	EstateValue decimal.Decimal
	Heirs       []faraid.Heir
}

// Format selects the decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Unknown extensions
// are treated as YAML, which also accepts most JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// =============================================================================
// FAMILY FACTORY
// =============================================================================

// FamilyFactory converts family files to engine input.
type FamilyFactory struct{}

// NewFamilyFactory creates a new family factory.
func NewFamilyFactory() *FamilyFactory {
	return &FamilyFactory{}
}

// ParseFile reads and validates a family file.
func (f *FamilyFactory) ParseFile(path string) (*Family, error) {
	ff, err := f.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.FromFile(*ff)
}

// ReadFile decodes a family file without validating it, so callers can
// apply overrides first.
func (f *FamilyFactory) ReadFile(path string) (*FamilyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read family file: %w", err)
	}
	return f.Decode(data, FormatFor(path))
}

// Parse decodes and validates a family document.
func (f *FamilyFactory) Parse(data []byte, format Format) (*Family, error) {
	ff, err := f.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return f.FromFile(*ff)
}

// Decode decodes a family document.
func (f *FamilyFactory) Decode(data []byte, format Format) (*FamilyFile, error) {
	var ff FamilyFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ff); err != nil {
			return nil, fmt.Errorf("failed to parse family JSON: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ff); err != nil {
			return nil, fmt.Errorf("failed to parse family YAML: %w", err)
		}
	}
	return &ff, nil
}

// FromFile validates ff and converts it to a Family.
func (f *FamilyFactory) FromFile(ff FamilyFile) (*Family, error) {
	var errs error

	gender, err := faraid.ParseGender(ff.OwnerGender)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("owner_gender: %w", err))
	}

	var value decimal.Decimal
	if ff.EstateValue == nil {
		errs = multierr.Append(errs, fmt.Errorf("estate_value is required"))
	} else {
		value = ff.EstateValue.Decimal
		if err := faraid.ValidateEstateValue(value); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("estate_value: %w", err))
		}
	}

	seen := make(map[string]int, len(ff.Heirs))
	heirs := make([]faraid.Heir, 0, len(ff.Heirs))
	for i, h := range ff.Heirs {
		id := strings.TrimSpace(h.ID)
		switch {
		case id == "":
			errs = multierr.Append(errs, fmt.Errorf("heirs[%d]: id is required", i))
		case seen[id] > 0:
			errs = multierr.Append(errs, fmt.Errorf("heirs[%d]: duplicate id %q (first at heirs[%d])", i, id, seen[id]-1))
		default:
			seen[id] = i + 1
		}
		if strings.TrimSpace(h.FullName) == "" {
			errs = multierr.Append(errs, fmt.Errorf("heirs[%d]: full_name is required", i))
		}
		heirs = append(heirs, faraid.Heir{
			ID:           id,
			FullName:     strings.TrimSpace(h.FullName),
			Relationship: h.Relationship,
			IC:           h.IC,
		})
	}

	if errs != nil {
		return nil, errs
	}
	return &Family{OwnerGender: gender, EstateValue: value, Heirs: heirs}, nil
}

// ToFile converts a Family back to its file form.
func (f *FamilyFactory) ToFile(family Family) FamilyFile {
	ff := FamilyFile{
		OwnerGender: family.OwnerGender.String(),
		EstateValue: NewAmount(family.EstateValue),
	}
	for _, h := range family.Heirs {
		ff.Heirs = append(ff.Heirs, HeirFile{
			ID:           h.ID,
			FullName:     h.FullName,
			Relationship: h.Relationship,
			IC:           h.IC,
		})
	}
	return ff
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
