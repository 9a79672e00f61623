package eav

import (
	"context"
	"regexp"
	"sort"

	"github.com/roach88/nucleus/internal/ir"
)

// invalidAttribute matches any character that may not appear in an
// attribute name.
var invalidAttribute = regexp.MustCompile(`[/:*?<>"'\\|+]`)

// errAttributeInvalid is the reason every backend rejects a bad attribute with.
const errAttributeInvalid = "Attribute name invalid"

// EntityAttributeValue is a single triple.
type EntityAttributeValue struct {
	Entity    ir.Address `json:"entity"`
	Attribute string     `json:"attribute"`
	Value     ir.Address `json:"value"`
}

// ValidateAttribute returns a generic "Attribute name invalid" error if a
// is empty or contains any of / : * ? < > " ' \ | +.
func ValidateAttribute(a string) error {
	if a == "" || invalidAttribute.MatchString(a) {
		return ir.ErrorGeneric(errAttributeInvalid)
	}
	return nil
}

// New creates a triple, rejecting invalid attribute names.
func New(entity ir.Address, attribute string, value ir.Address) (EntityAttributeValue, error) {
	if err := ValidateAttribute(attribute); err != nil {
		return EntityAttributeValue{}, err
	}
	return EntityAttributeValue{Entity: entity, Attribute: attribute, Value: value}, nil
}

// Validate re-checks the attribute. Backends call it on Add.
func (t EntityAttributeValue) Validate() error {
	return ValidateAttribute(t.Attribute)
}

// Query constrains a fetch. Nil fields are unconstrained; the zero Query
// matches every triple.
type Query struct {
	Entity    *ir.Address
	Attribute *string
	Value     *ir.Address
}

// WithEntity returns a copy of q constrained to entity e.
func (q Query) WithEntity(e ir.Address) Query {
	q.Entity = &e
	return q
}

// WithAttribute returns a copy of q constrained to attribute a.
func (q Query) WithAttribute(a string) Query {
	q.Attribute = &a
	return q
}

// WithValue returns a copy of q constrained to value v.
func (q Query) WithValue(v ir.Address) Query {
	q.Value = &v
	return q
}

// Matches reports whether t satisfies every constraint in q.
func (q Query) Matches(t EntityAttributeValue) bool {
	if q.Entity != nil && *q.Entity != t.Entity {
		return false
	}
	if q.Attribute != nil && *q.Attribute != t.Attribute {
		return false
	}
	if q.Value != nil && *q.Value != t.Value {
		return false
	}
	return true
}

// Set is an unordered set of triples.
type Set map[EntityAttributeValue]struct{}

// NewSet creates a set holding ts.
func NewSet(ts ...EntityAttributeValue) Set {
	s := make(Set, len(ts))
	for _, t := range ts {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts t.
func (s Set) Add(t EntityAttributeValue) {
	s[t] = struct{}{}
}

// Contains reports whether t is in the set.
func (s Set) Contains(t EntityAttributeValue) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the triples ordered by entity, attribute, then value.
func (s Set) Sorted() []EntityAttributeValue {
	out := make([]EntityAttributeValue, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		return a.Value < b.Value
	})
	return out
}

// Storage is the capability set every EAV backend provides.
//
// Clone returns a handle onto the same underlying data: writes through one
// handle are visible through every clone.
type Storage interface {
	Add(ctx context.Context, t EntityAttributeValue) error
	Fetch(ctx context.Context, q Query) (Set, error)
	Clone() Storage
}
