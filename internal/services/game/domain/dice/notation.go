package dice

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// Limits accepted by ParseNotation.
const (
	MaxDiceCount = 100
	MaxDieSides  = 1000
)

// ErrInvalidNotation matches any notation parse failure via errors.Is.
var ErrInvalidNotation = apperrors.New(apperrors.CodeDiceInvalidNotation, "invalid dice notation")

var notationPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:([+-])(\d+))?$`)

// Notation is a parsed NdS+M expression.
type Notation struct {
	Count    int
	Sides    int
	Modifier int
}

// String returns the canonical NdS[+/-M] form.
func (n Notation) String() string {
	out := strconv.Itoa(n.Count) + "d" + strconv.Itoa(n.Sides)
	switch {
	case n.Modifier > 0:
		out += "+" + strconv.Itoa(n.Modifier)
	case n.Modifier < 0:
		out += "-" + strconv.Itoa(-n.Modifier)
	}
	return out
}

// Max is the highest total the notation can produce without a critical.
func (n Notation) Max() int {
	return n.Count*n.Sides + n.Modifier
}

// ParseNotation parses NdS[+/-M]. The count defaults to 1 when omitted;
// case and interior whitespace are ignored.
func ParseNotation(text string) (Notation, error) {
	compact := strings.ToLower(strings.Join(strings.Fields(text), ""))
	match := notationPattern.FindStringSubmatch(compact)
	if match == nil {
		return Notation{}, invalidNotation(text)
	}

	count := 1
	if match[1] != "" {
		parsed, err := strconv.Atoi(match[1])
		if err != nil {
			return Notation{}, invalidNotation(text)
		}
		count = parsed
	}
	sides, err := strconv.Atoi(match[2])
	if err != nil {
		return Notation{}, invalidNotation(text)
	}
	if count < 1 || count > MaxDiceCount || sides < 1 || sides > MaxDieSides {
		return Notation{}, invalidNotation(text)
	}

	modifier := 0
	if match[4] != "" {
		modifier, err = strconv.Atoi(match[4])
		if err != nil {
			return Notation{}, invalidNotation(text)
		}
		if match[3] == "-" {
			modifier = -modifier
		}
	}
	return Notation{Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParseNotation is ParseNotation for compile-time constants.
func MustParseNotation(text string) Notation {
	n, err := ParseNotation(text)
	if err != nil {
		panic(err)
	}
	return n
}

func invalidNotation(text string) error {
	return apperrors.WithMetadata(apperrors.CodeDiceInvalidNotation, "invalid dice notation: "+text,
		map[string]string{"Notation": text})
}

// MarshalText renders the canonical form so rolls serialize as "2d6+1".
func (n Notation) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText parses the canonical form.
func (n *Notation) UnmarshalText(text []byte) error {
	parsed, err := ParseNotation(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
