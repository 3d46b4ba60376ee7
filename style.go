package richtext

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Facet is one independent style attribute.
type Facet uint8

// Style facets
const (
	FontFamilyFacet Facet = iota
	FontSizeFacet
	ColorFacet
	BoldFacet
	ItalicFacet
	CodeFacet
	facetCount
)

func (f Facet) String() string {
	switch f {
	case FontFamilyFacet:
		return "fontFamily"
	case FontSizeFacet:
		return "fontSize"
	case ColorFacet:
		return "color"
	case BoldFacet:
		return "bold"
	case ItalicFacet:
		return "italic"
	case CodeFacet:
		return "code"
	}
	return fmt.Sprintf("Facet(%d)", f)
}

// FacetFromString returns the facet for a facet name as used in JSON records,
// e.g. "fontSize".
func FacetFromString(name string) (Facet, bool) {
	for f := FontFamilyFacet; f < facetCount; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, true
		}
	}
	return 0, false
}

// --- Style -----------------------------------------------------------------

// Style is a record of optional style facets. A facet is either unset or set
// to a value; a facet explicitly set to false is different from an unset one.
//
// The zero value is the default style, with every facet unset.
// Styles are comparable values.
type Style struct {
	set    uint8 // bit i flags Facet(i) as set
	family string
	size   float64
	color  string
	flags  uint8 // bit i holds the boolean value of Facet(i)
}

// Has reports whether facet f is set.
func (s Style) Has(f Facet) bool {
	return s.set&(1<<f) != 0
}

// IsDefault is true if no facet is set.
func (s Style) IsDefault() bool {
	return s.set == 0
}

// FontFamily returns the font family, if set.
func (s Style) FontFamily() (string, bool) {
	return s.family, s.Has(FontFamilyFacet)
}

// FontSize returns the font size in points, if set.
func (s Style) FontSize() (float64, bool) {
	return s.size, s.Has(FontSizeFacet)
}

// Color returns the color token, if set.
func (s Style) Color() (string, bool) {
	return s.color, s.Has(ColorFacet)
}

// Bold returns the bold flag, if set.
func (s Style) Bold() (bool, bool) {
	return s.flag(BoldFacet)
}

// Italic returns the italic flag, if set.
func (s Style) Italic() (bool, bool) {
	return s.flag(ItalicFacet)
}

// Code returns the inline-code flag, if set.
func (s Style) Code() (bool, bool) {
	return s.flag(CodeFacet)
}

func (s Style) flag(f Facet) (bool, bool) {
	return s.flags&(1<<f) != 0, s.Has(f)
}

// Equals compares two styles facet by facet. Values of unset facets do
// not take part in the comparison.
func (s Style) Equals(other Style) bool {
	return s.normalized() == other.normalized()
}

// normalized clears the values of unset facets.
func (s Style) normalized() Style {
	if !s.Has(FontFamilyFacet) {
		s.family = ""
	}
	if !s.Has(FontSizeFacet) {
		s.size = 0
	}
	if !s.Has(ColorFacet) {
		s.color = ""
	}
	s.flags &= s.set
	return s
}

// validate checks the values of set facets.
func (s Style) validate() error {
	if !s.Has(FontSizeFacet) {
		return nil
	}
	return s.change(FontSizeFacet).validate()
}

// With returns a copy of s with the change applied.
func (s Style) With(c Change) Style {
	if c.unset {
		s.set &^= 1 << c.facet
		return s.normalized()
	}
	s.set |= 1 << c.facet
	switch c.facet {
	case FontFamilyFacet:
		s.family = c.str
	case FontSizeFacet:
		s.size = c.num
	case ColorFacet:
		s.color = c.str
	case BoldFacet, ItalicFacet, CodeFacet:
		if c.flag {
			s.flags |= 1 << c.facet
		} else {
			s.flags &^= 1 << c.facet
		}
	}
	return s
}

// Common returns the facets which are set to equal values in both s and other.
func (s Style) Common(other Style) Style {
	var c Style
	for f := FontFamilyFacet; f < facetCount; f++ {
		if !s.Has(f) || !other.Has(f) {
			continue
		}
		if ch := s.change(f); ch == other.change(f) {
			c = c.With(ch)
		}
	}
	return c
}

// change returns a Change which sets facet f to the value it has in s.
func (s Style) change(f Facet) Change {
	if !s.Has(f) {
		return Unset(f)
	}
	switch f {
	case FontFamilyFacet:
		return Change{facet: f, str: s.family}
	case FontSizeFacet:
		return Change{facet: f, num: s.size}
	case ColorFacet:
		return Change{facet: f, str: s.color}
	}
	b, _ := s.flag(f)
	return Change{facet: f, flag: b}
}

// String returns an informational string for a style, listing all set facets.
// Clients must not rely on the format of the string.
func (s Style) String() string {
	if s.IsDefault() {
		return "[default]"
	}
	var parts []string
	for f := FontFamilyFacet; f < facetCount; f++ {
		if s.Has(f) {
			parts = append(parts, s.change(f).String())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// --- Style changes ---------------------------------------------------------

// Change sets a single style facet to a new value, or unsets it.
type Change struct {
	facet Facet
	unset bool
	str   string
	num   float64
	flag  bool
}

// FontFamily sets the font family. An empty family unsets the facet.
func FontFamily(family string) Change {
	if family == "" {
		return Unset(FontFamilyFacet)
	}
	return Change{facet: FontFamilyFacet, str: family}
}

// FontSize sets the font size in points. Sizes have to be positive and finite,
// otherwise applying the change will be rejected.
func FontSize(pt float64) Change {
	return Change{facet: FontSizeFacet, num: pt}
}

// Color sets the text color. Colors are tokens like "#d73a49" and are not
// interpreted. An empty token unsets the facet.
func Color(token string) Change {
	if token == "" {
		return Unset(ColorFacet)
	}
	return Change{facet: ColorFacet, str: token}
}

// Bold sets the bold flag.
func Bold(b bool) Change {
	return Change{facet: BoldFacet, flag: b}
}

// Italic sets the italic flag.
func Italic(b bool) Change {
	return Change{facet: ItalicFacet, flag: b}
}

// Code sets the inline-code flag.
func Code(b bool) Change {
	return Change{facet: CodeFacet, flag: b}
}

// Unset clears facet f.
func Unset(f Facet) Change {
	return Change{facet: f, unset: true}
}

// ParseChange creates a change from a facet name and a textual value, as
// used on command lines ("bold", "true"). An empty value unsets the facet.
func ParseChange(facet, value string) (Change, error) {
	f, ok := FacetFromString(facet)
	if !ok {
		return Change{}, fmt.Errorf("%w: unknown style facet %q", ErrIllegalArguments, facet)
	}
	if value == "" {
		return Unset(f), nil
	}
	switch f {
	case FontFamilyFacet:
		return FontFamily(value), nil
	case ColorFacet:
		return Color(value), nil
	case FontSizeFacet:
		pt, err := strconv.ParseFloat(strings.TrimSuffix(value, "pt"), 64)
		if err != nil {
			return Change{}, fmt.Errorf("%w: font size %q: %v", ErrIllegalArguments, value, err)
		}
		c := FontSize(pt)
		return c, c.validate()
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return Change{}, fmt.Errorf("%w: %s flag %q: %v", ErrIllegalArguments, f, value, err)
	}
	return Change{facet: f, flag: b}, nil
}

// Facet returns the facet this change operates on.
func (c Change) Facet() Facet {
	return c.facet
}

// IsUnset is true for changes clearing a facet.
func (c Change) IsUnset() bool {
	return c.unset
}

func (c Change) validate() error {
	if c.facet >= facetCount {
		return fmt.Errorf("%w: unknown style facet %d", ErrIllegalArguments, c.facet)
	}
	if c.unset || c.facet != FontSizeFacet {
		return nil
	}
	if c.num <= 0 || math.IsNaN(c.num) || math.IsInf(c.num, 0) {
		return fmt.Errorf("%w: font size must be positive, is %v", ErrIllegalArguments, c.num)
	}
	return nil
}

func (c Change) String() string {
	if c.unset {
		return c.facet.String() + "=<unset>"
	}
	switch c.facet {
	case FontFamilyFacet, ColorFacet:
		return fmt.Sprintf("%s=%q", c.facet, c.str)
	case FontSizeFacet:
		return fmt.Sprintf("%s=%gpt", c.facet, c.num)
	}
	return fmt.Sprintf("%s=%t", c.facet, c.flag)
}
