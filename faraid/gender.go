package faraid

import "strings"

// Gender is the estate owner's gender. It decides which spouse label can
// inherit: a male owner leaves a wife, a female owner leaves a husband.
type Gender uint8

const (
	GenderUnknown Gender = iota
	Male
	Female
)

// ParseGender accepts "male"/"female" (and "m"/"f"), case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	default:
		return GenderUnknown, &GenderError{Value: s}
	}
}

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// SpouseRole returns the only spouse role that may inherit from an owner of
// this gender, or RelationshipUnknown if the gender is not set.
func (g Gender) SpouseRole() Relationship {
	switch g {
	case Male:
		return Wife
	case Female:
		return Husband
	default:
		return RelationshipUnknown
	}
}

func (g Gender) MarshalText() ([]byte, error) {
	if g != Male && g != Female {
		return nil, &GenderError{Value: g.String()}
	}
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
