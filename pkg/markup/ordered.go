package markup

import (
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attr is a single iframe attribute. Value holds a string, a bool or a *Style.
type Attr struct {
	Name  string
	Value any
}

// Attributes keeps insertion order so serialized output is stable.
// Setting an existing name replaces its value in place.
type Attributes struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewAttributes() *Attributes {
	return &Attributes{m: orderedmap.New[string, any]()}
}

func (a *Attributes) Set(name string, value any) {
	if a.m == nil {
		a.m = orderedmap.New[string, any]()
	}
	a.m.Set(name, value)
}

func (a *Attributes) Get(name string) (any, bool) {
	if a.m == nil {
		return nil, false
	}
	return a.m.Get(name)
}

func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Attributes) Len() int {
	if a.m == nil {
		return 0
	}
	return a.m.Len()
}

func (a *Attributes) Names() []string {
	names := make([]string, 0, a.Len())
	for _, attr := range a.Entries() {
		names = append(names, attr.Name)
	}
	return names
}

func (a *Attributes) Entries() []Attr {
	out := make([]Attr, 0, a.Len())
	if a.m == nil {
		return out
	}
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Attr{Name: p.Key, Value: p.Value})
	}
	return out
}

func (a *Attributes) MarshalJSON() ([]byte, error) {
	if a.m == nil {
		return []byte("{}"), nil
	}
	return a.m.MarshalJSON()
}

type StyleEntry struct {
	Property string
	Value    string
}

// Style is an ordered set of camelCase CSS properties.
type Style struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewStyle(entries ...StyleEntry) *Style {
	s := &Style{m: orderedmap.New[string, string]()}
	for _, e := range entries {
		s.Set(e.Property, e.Value)
	}
	return s
}

func (s *Style) Set(property, value string) {
	if s.m == nil {
		s.m = orderedmap.New[string, string]()
	}
	s.m.Set(property, value)
}

func (s *Style) Get(property string) (string, bool) {
	if s.m == nil {
		return "", false
	}
	return s.m.Get(property)
}

func (s *Style) Entries() []StyleEntry {
	if s.m == nil {
		return nil
	}
	out := make([]StyleEntry, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, StyleEntry{Property: p.Key, Value: p.Value})
	}
	return out
}

// String renders "kebab-key: value" pairs joined with "; ".
func (s *Style) String() string {
	entries := s.Entries()
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, KebabCase(e.Property)+": "+e.Value)
	}
	return strings.Join(parts, "; ")
}

func (s *Style) MarshalJSON() ([]byte, error) {
	if s.m == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}

// UnmarshalJSON keeps the property order of the document.
func (s *Style) UnmarshalJSON(data []byte) error {
	s.m = orderedmap.New[string, string]()
	return s.m.UnmarshalJSON(data)
}

var upperLetter = regexp.MustCompile(`([A-Z])`)

// KebabCase converts a camelCase CSS property name.
func KebabCase(property string) string {
	return strings.ToLower(upperLetter.ReplaceAllString(property, "-$1"))
}
