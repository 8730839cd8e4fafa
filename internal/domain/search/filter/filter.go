package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter: every must condition holds, and when should is
// non-empty at least one should condition holds.
type Expression struct {
	must   []Condition
	should []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0
}

// Kind is the predicate type of a Condition.
type Kind int

const (
	// AnyOf holds when an array field shares at least one value with the condition.
	AnyOf Kind = iota + 1
	// Contains holds when a string field contains the text, ignoring case.
	Contains
)

// Condition is a single filter clause on one field.
type Condition struct {
	key    string
	kind   Kind
	values []string
	text   string
}

// NewAnyOf creates a set-membership condition. At least one value is required.
func NewAnyOf(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	cp := make([]string, len(values))
	copy(cp, values)
	return Condition{key: key, kind: AnyOf, values: cp}, nil
}

// NewContains creates a case-insensitive substring condition.
// The text is literal; an empty text matches every string value.
func NewContains(key, text string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, kind: Contains, text: text}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Kind returns the predicate type.
func (c Condition) Kind() Kind { return c.kind }

// Values returns the set for an AnyOf condition.
func (c Condition) Values() []string { return c.values }

// Text returns the substring for a Contains condition.
func (c Condition) Text() string { return c.text }

// IsAnyOf reports whether this is a set-membership condition.
func (c Condition) IsAnyOf() bool { return c.kind == AnyOf }

// IsContains reports whether this is a substring condition.
func (c Condition) IsContains() bool { return c.kind == Contains }
