/*
relationship.go - Closed set of Faraid relationship roles

PURPOSE:
  Family members arrive with free-form labels ("Paternal Sister",
  "maternal_brother", "SON"). Labels are parsed exactly once, at the input
  boundary, into a Relationship value. The rest of the engine only ever
  switches on Relationship, never on strings.

NORMALIZATION:
  lowercase, trim, then drop '_', '-' and spaces:
    "Paternal Sister"  -> "paternalsister"
    "maternal_brother" -> "maternalbrother"

SIBLING TIERS:
  brother / sister                  same father and mother (full)
  maternalbrother / maternalsister  same mother only
  paternalbrother / paternalsister  same father only

GRANDMOTHER SIDE:
  "maternalgrandmother" and "paternalgrandmother" are accepted as the
  grandmother role with a known side. A plain "grandmother" has no side.

SEE ALSO:
  - classify.go: Dispatches parsed roles into CategorizedHeirs
  - gender.go: Owner gender (decides husband/wife eligibility)
*/
package faraid

import (
	"fmt"
	"strings"
)

// Relationship is a canonical Faraid role.
type Relationship uint8

const (
	// RelationshipUnknown is the zero value. Labels that do not name a
	// Faraid role parse to it.
	RelationshipUnknown Relationship = iota
	Son
	Daughter
	Father
	Mother
	Grandfather
	Grandmother
	Husband
	Wife
	Brother
	Sister
	MaternalBrother
	MaternalSister
	PaternalBrother
	PaternalSister
	Grandson
	Granddaughter
)

var relationshipNames = [...]string{
	RelationshipUnknown: "unknown",
	Son:                 "son",
	Daughter:            "daughter",
	Father:              "father",
	Mother:              "mother",
	Grandfather:         "grandfather",
	Grandmother:         "grandmother",
	Husband:             "husband",
	Wife:                "wife",
	Brother:             "brother",
	Sister:              "sister",
	MaternalBrother:     "maternalbrother",
	MaternalSister:      "maternalsister",
	PaternalBrother:     "paternalbrother",
	PaternalSister:      "paternalsister",
	Grandson:            "grandson",
	Granddaughter:       "granddaughter",
}

// Side records which parent a grandparent is related through.
type Side uint8

const (
	SideUnspecified Side = iota
	SideMaternal
	SidePaternal
)

func (s Side) String() string {
	switch s {
	case SideMaternal:
		return "maternal"
	case SidePaternal:
		return "paternal"
	default:
		return "unspecified"
	}
}

// NormalizeLabel lowercases a relationship label and removes separators.
func NormalizeLabel(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	return strings.NewReplacer("_", "", "-", "", " ", "", "\t", "").Replace(normalized)
}

// ParseRelationship maps a free-form label to its canonical role.
// Unrecognized labels return RelationshipUnknown and an error wrapping
// ErrUnknownRelationship.
func ParseRelationship(label string) (Relationship, error) {
	r, _, err := ParseRelationshipSide(label)
	return r, err
}

// ParseRelationshipSide is ParseRelationship that also reports the
// grandmother side encoded in the label, if any.
func ParseRelationshipSide(label string) (Relationship, Side, error) {
	normalized := NormalizeLabel(label)

	switch normalized {
	case "maternalgrandmother":
		return Grandmother, SideMaternal, nil
	case "paternalgrandmother":
		return Grandmother, SidePaternal, nil
	case "", "unknown":
		return RelationshipUnknown, SideUnspecified, &LabelError{Label: label}
	}

	for r, name := range relationshipNames {
		if name == normalized {
			return Relationship(r), SideUnspecified, nil
		}
	}
	return RelationshipUnknown, SideUnspecified, &LabelError{Label: label}
}

func (r Relationship) String() string {
	if int(r) < len(relationshipNames) {
		return relationshipNames[r]
	}
	return fmt.Sprintf("relationship(%d)", uint8(r))
}

// IsKnown reports whether r is one of the canonical roles.
func (r Relationship) IsKnown() bool {
	return r != RelationshipUnknown && int(r) < len(relationshipNames)
}

// IsSpouse reports whether r is husband or wife.
func (r Relationship) IsSpouse() bool {
	return r == Husband || r == Wife
}

// IsSibling reports whether r is any of the six sibling roles.
func (r Relationship) IsSibling() bool {
	switch r {
	case Brother, Sister, MaternalBrother, MaternalSister, PaternalBrother, PaternalSister:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler (JSON and YAML use it).
func (r Relationship) MarshalText() ([]byte, error) {
	if !r.IsKnown() {
		return nil, &LabelError{Label: r.String()}
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Relationship) UnmarshalText(text []byte) error {
	parsed, err := ParseRelationship(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Relationships returns every canonical role in declaration order.
func Relationships() []Relationship {
	out := make([]Relationship, 0, len(relationshipNames)-1)
	for r := Son; int(r) < len(relationshipNames); r++ {
		out = append(out, r)
	}
	return out
}
