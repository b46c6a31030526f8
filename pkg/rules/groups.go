package rules

import (
	"errors"
	"fmt"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// AddRuleToGroup appends rule to the named group, creating the group on
// first use. The group stores the pointer, so the master list is untouched
// and later mutations are visible through every reference.
func (rs *RuleSet) AddRuleToGroup(groupName string, rule *models.Rule) error {
	if rule == nil {
		return newBuildError("add_rule_to_group", fmt.Errorf("%w: nil rule", ErrInvalidRule))
	}
	if _, exists := rs.groups[groupName]; !exists {
		rs.groupOrder = append(rs.groupOrder, groupName)
	}
	rs.groups[groupName] = append(rs.groups[groupName], rule)
	return nil
}

// ApplyToGroup runs operation on every rule of the group in group order.
// It stops at the first operation error and returns it. On failure the
// points of every rule in the group are restored, so no rule keeps a
// partial change.
func (rs *RuleSet) ApplyToGroup(groupName string, operation func(r *models.Rule) error) error {
	group, exists := rs.groups[groupName]
	if !exists {
		return newBuildError("apply_to_group", fmt.Errorf("%w: %q", ErrGroupNotFound, groupName))
	}

	snapshot := make([]int, len(group))
	for i, r := range group {
		snapshot[i] = r.Points()
	}

	for i, r := range group {
		if err := operation(r); err != nil {
			err = errors.Join(err, rollbackPoints(group[:i+1], snapshot))
			return newBuildError("apply_to_group", fmt.Errorf("group %q rule %d: %w", groupName, i, err))
		}
	}
	return nil
}

// rollbackPoints restores snapshot in reverse order so a rule listed twice
// ends with its oldest value.
func rollbackPoints(visited []*models.Rule, snapshot []int) error {
	var errs []error
	for i := len(visited) - 1; i >= 0; i-- {
		if err := visited[i].SetPoints(snapshot[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Group returns a copy of the named group's rule list.
func (rs *RuleSet) Group(groupName string) ([]*models.Rule, bool) {
	group, exists := rs.groups[groupName]
	if !exists {
		return nil, false
	}
	out := make([]*models.Rule, len(group))
	copy(out, group)
	return out, true
}

// GroupNames returns group names in creation order.
func (rs *RuleSet) GroupNames() []string {
	out := make([]string, len(rs.groupOrder))
	copy(out, rs.groupOrder)
	return out
}

// ScalePoints returns a group operation multiplying each rule's points by
// factor.
func ScalePoints(factor int) func(r *models.Rule) error {
	return func(r *models.Rule) error {
		return r.SetPoints(r.Points() * factor)
	}
}
