package rules

import (
	"errors"
	"fmt"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// RuleSet accumulates point rules through a fluent API and organises them
// into named groups.
//
// The builder works against a focus: ForAttribute selects the attribute,
// WithValue queues candidate values and WithPoints turns every queued value
// into one rule. Chained calls never panic; failures are collected and
// reported by Err.
//
// Usage:
//
//	rs := rules.NewRuleSet().
//		ForAttribute("country").WithValue("US", "CA").WithPoints(10).
//		ForAttribute("isp").WithValue("ISP1").WithPoints(15)
//	if err := rs.Err(); err != nil {
//		// handle
//	}
//
// A RuleSet is not safe for concurrent use.
type RuleSet struct {
	rules      []*models.Rule
	groups     map[string][]*models.Rule
	groupOrder []string

	// focus is empty when no valid attribute is selected.
	focus   string
	pending []*string

	errs []error
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		rules:  make([]*models.Rule, 0),
		groups: make(map[string][]*models.Rule),
	}
}

func (rs *RuleSet) fail(op string, err error) {
	rs.errs = append(rs.errs, newBuildError(op, err))
}

// Err returns every failure recorded by chained calls since the last
// ClearErr, joined into one error. It is nil when all calls succeeded.
func (rs *RuleSet) Err() error {
	return errors.Join(rs.errs...)
}

// ClearErr forgets previously recorded failures.
func (rs *RuleSet) ClearErr() {
	rs.errs = nil
}

// ForAttribute selects the attribute subsequent values and points apply to.
// Pending values are discarded. An unknown attribute records
// ErrUnknownAttribute and leaves the builder without a focus, so later
// WithValue and WithPoints calls fail with ErrNoFocusAttribute instead of
// silently reusing a stale attribute.
func (rs *RuleSet) ForAttribute(attribute string) *RuleSet {
	rs.pending = nil
	if !models.IsValidAttribute(attribute) {
		rs.focus = ""
		rs.fail("for_attribute", fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute))
		return rs
	}
	rs.focus = attribute
	return rs
}

// WithValue queues one or more values for the focused attribute. The value
// models.AnyValue queues a wildcard.
func (rs *RuleSet) WithValue(values ...string) *RuleSet {
	if rs.focus == "" {
		rs.fail("with_value", ErrNoFocusAttribute)
		return rs
	}
	for _, v := range values {
		if v == models.AnyValue {
			rs.pending = append(rs.pending, nil)
			continue
		}
		v := v // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		rs.pending = append(rs.pending, &v)
	}
	return rs
}

// WithAnyValue queues a wildcard that matches any value of the focused
// attribute.
func (rs *RuleSet) WithAnyValue() *RuleSet {
	if rs.focus == "" {
		rs.fail("with_any_value", ErrNoFocusAttribute)
		return rs
	}
	rs.pending = append(rs.pending, nil)
	return rs
}

// WithPoints creates one rule per pending value. Either every pending value
// produces a rule or none does. The pending list is cleared in both cases;
// the focus is kept so another WithValue/WithPoints pair can follow.
func (rs *RuleSet) WithPoints(points int) *RuleSet {
	pending := rs.pending
	rs.pending = nil

	if rs.focus == "" {
		rs.fail("with_points", ErrNoFocusAttribute)
		return rs
	}

	batch := make([]*models.Rule, 0, len(pending))
	for _, v := range pending {
		r, err := models.NewRule(rs.focus, v, points)
		if err != nil {
			rs.fail("with_points", err)
			return rs
		}
		batch = append(batch, r)
	}
	rs.rules = append(rs.rules, batch...)
	return rs
}

// AddRule appends an existing rule to the master list by reference.
func (rs *RuleSet) AddRule(rule *models.Rule) error {
	if rule == nil {
		return newBuildError("add_rule", fmt.Errorf("%w: nil rule", ErrInvalidRule))
	}
	rs.rules = append(rs.rules, rule)
	return nil
}

// Build returns the master list in insertion order. The returned slice is a
// copy, the rules themselves are shared.
func (rs *RuleSet) Build() []*models.Rule {
	out := make([]*models.Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the size of the master list.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// CloneRuleAt returns a new RuleSet holding copies of every rule in the
// master list followed by another copy of the rule at index. Groups are not
// carried over and the clone shares no rule pointers with the original.
func (rs *RuleSet) CloneRuleAt(index int) (*RuleSet, error) {
	if index < 0 || index >= len(rs.rules) {
		return nil, newBuildError("clone_rule", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(rs.rules)))
	}

	clone := NewRuleSet()
	clone.rules = make([]*models.Rule, 0, len(rs.rules)+1)
	for _, r := range rs.rules {
		clone.rules = append(clone.rules, r.Clone())
	}
	clone.rules = append(clone.rules, rs.rules[index].Clone())
	return clone, nil
}

// Table flattens the rule set into attribute -> value -> points.
//
// Precedence is last write wins over a fixed order: the master list first,
// then groups in the order they were created, each in list order.
func (rs *RuleSet) Table() models.RuleTable {
	table := make(models.RuleTable)
	for _, r := range rs.rules {
		table.Put(r)
	}
	for _, name := range rs.groupOrder {
		for _, r := range rs.groups[name] {
			table.Put(r)
		}
	}
	return table
}
