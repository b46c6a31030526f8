package models

// RuleTable is the flattened form of a rule set: attribute -> value -> points.
// A value key equal to AnyValue holds the wildcard award for the attribute.
type RuleTable map[string]map[string]int

// Put writes the rule into the table, overwriting any previous entry for the
// same attribute and value.
func (t RuleTable) Put(r *Rule) {
	values, ok := t[r.attribute]
	if !ok {
		values = make(map[string]int)
		t[r.attribute] = values
	}
	values[r.tableKey()] = r.points
}

// Clone returns a deep copy so that the copy and the original never alias.
func (t RuleTable) Clone() RuleTable {
	out := make(RuleTable, len(t))
	for attr, values := range t {
		cp := make(map[string]int, len(values))
		for v, p := range values {
			cp[v] = p
		}
		out[attr] = cp
	}
	return out
}

// DefaultRuleTable returns a fresh copy of the built-in point rules.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		"country": {"US": 10, "UK": 20},
		"region":  {"NY": 5, "CA": 8},
		"city":    {"New York City": 5, "Los Angeles": 8},
		"isp":     {"ISP1": 10, "ISP2": 15},
		"org":     {"Organization1": 10, "Organization2": 15},
	}
}
