package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// L-<area>-<building>-<unit>, e.g. L-RL-17-101 or L-VA-380-408
	codeRe = regexp.MustCompile(`^L-([A-Za-z]+)-([0-9A-Za-z]+)-([0-9A-Za-z]+)$`)
)

// ParsedListingName holds the structured data parsed from a listing's internal name.
type ParsedListingName struct {
	Code     string
	Name     string
	Area     string
	Building string
	Unit     string
}

// ParseListingName splits an internal listing name such as
// "L-RL-17-101 | LEB Rita Ludolf 17/101" into the unit code and display name.
// Names without a separator are treated as a bare code.
func ParseListingName(raw string) (ParsedListingName, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return ParsedListingName{}, fmt.Errorf("empty listing name")
	}

	code, name, _ := strings.Cut(s, "|")
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return ParsedListingName{}, fmt.Errorf("unable to parse listing code from name: %q", raw)
	}
	// Upstream sometimes writes the code with spaces around the dashes.
	code = strings.ReplaceAll(code, " - ", "-")

	parsed := ParsedListingName{Code: code, Name: name}
	if m := codeRe.FindStringSubmatch(code); m != nil {
		parsed.Area = strings.ToUpper(m[1])
		parsed.Building = m[2]
		parsed.Unit = m[3]
	}
	return parsed, nil
}
