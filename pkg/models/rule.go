package models

import (
	"errors"
	"fmt"
)

// AnyValue is the reserved value key that stands for "any value of the
// attribute" in a RuleTable and in persisted rule files.
const AnyValue = "*"

var (
	// ErrInvalidRule is returned for rules with negative points.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrUnknownAttribute is returned for attribute names outside the allow-list.
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// Rule awards Points when an IP's Attribute has Value. A nil value matches
// any value of the attribute.
type Rule struct {
	attribute string
	value     *string
	points    int
}

// NewRule validates and creates a rule. Negative points are rejected.
func NewRule(attribute string, value *string, points int) (*Rule, error) {
	if !IsValidAttribute(attribute) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	if points < 0 {
		return nil, fmt.Errorf("%w: points must be non-negative, got %d", ErrInvalidRule, points)
	}
	r := &Rule{attribute: attribute, points: points}
	if value != nil {
		v := *value
		r.value = &v
	}
	return r, nil
}

// NewValueRule is a shorthand for an exact-value rule.
func NewValueRule(attribute, value string, points int) (*Rule, error) {
	return NewRule(attribute, &value, points)
}

// Attribute returns the attribute name the rule scores.
func (r *Rule) Attribute() string { return r.attribute }

// Value returns the matched value, or false for a wildcard rule.
func (r *Rule) Value() (string, bool) {
	if r.value == nil {
		return "", false
	}
	return *r.value, true
}

// Points returns the award added to the score on a match.
func (r *Rule) Points() int { return r.points }

// IsWildcard reports whether the rule matches any value of its attribute.
func (r *Rule) IsWildcard() bool { return r.value == nil }

// SetPoints changes the award of a rule in place. Every holder of the same
// *Rule observes the change.
func (r *Rule) SetPoints(points int) error {
	if points < 0 {
		return fmt.Errorf("%w: points must be non-negative, got %d", ErrInvalidRule, points)
	}
	r.points = points
	return nil
}

// Clone returns an independent copy of the rule.
func (r *Rule) Clone() *Rule {
	c := &Rule{attribute: r.attribute, points: r.points}
	if r.value != nil {
		v := *r.value
		c.value = &v
	}
	return c
}

// Equal compares two rules by value.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.attribute != other.attribute || r.points != other.points {
		return false
	}
	if r.value == nil || other.value == nil {
		return r.value == other.value
	}
	return *r.value == *other.value
}

// tableKey is the key the rule occupies in a flattened RuleTable.
func (r *Rule) tableKey() string {
	if r.value == nil {
		return AnyValue
	}
	return *r.value
}

func (r *Rule) String() string {
	if r.value != nil {
		return fmt.Sprintf("Award %d points for %s with value '%s'", r.points, r.attribute, *r.value)
	}
	return fmt.Sprintf("Award %d points for any value of %s", r.points, r.attribute)
}
