package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

func ruleValue(t *testing.T, r *models.Rule) string {
	t.Helper()
	v, ok := r.Value()
	require.True(t, ok, "expected an exact-value rule")
	return v
}

func TestForAttributeWithValueWithPoints(t *testing.T) {
	testCases := []struct {
		attribute string
		value     string
		points    int
	}{
		{"country", "US", 10},
		{"isp", "ISP1", 0},
		{"asn", "15169", 7},
		{"timezone_id", "Europe/Istanbul", 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.attribute, func(t *testing.T) {
			rs := NewRuleSet().ForAttribute(tc.attribute).WithValue(tc.value).WithPoints(tc.points)
			require.NoError(t, rs.Err())

			built := rs.Build()
			require.Len(t, built, 1)
			assert.Equal(t, tc.attribute, built[0].Attribute())
			assert.Equal(t, tc.value, ruleValue(t, built[0]))
			assert.Equal(t, tc.points, built[0].Points())
		})
	}
}

func TestWithPointsCreatesOneRulePerPendingValue(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("country").WithValue("US", "CA").WithValue("MX").WithPoints(10).
		WithValue("UK").WithPoints(20)
	require.NoError(t, rs.Err())

	built := rs.Build()
	require.Len(t, built, 4)
	for i, want := range []string{"US", "CA", "MX", "UK"} {
		assert.Equal(t, want, ruleValue(t, built[i]))
	}
	assert.Equal(t, 10, built[2].Points())
	assert.Equal(t, 20, built[3].Points())
}

func TestWithPointsNegativeIsAtomic(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US", "UK", "DE").WithPoints(-1)

	assert.ErrorIs(t, rs.Err(), ErrInvalidRule)
	assert.Equal(t, 0, rs.Len())

	// pending values were cleared with the failure
	rs.WithPoints(5)
	assert.Equal(t, 0, rs.Len())
}

func TestUnknownAttributeNeverAddsRules(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("country").WithValue("US").WithPoints(10).
		ForAttribute("not_a_real_attr").WithValue("x").WithPoints(5)

	err := rs.Err()
	assert.ErrorIs(t, err, ErrUnknownAttribute)
	assert.ErrorIs(t, err, ErrNoFocusAttribute)

	built := rs.Build()
	require.Len(t, built, 1)
	assert.Equal(t, "country", built[0].Attribute())
}

func TestBuilderUsableAfterFailure(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("bogus").WithValue("x").
		ForAttribute("city").WithValue("Paris").WithPoints(3)

	assert.Error(t, rs.Err())
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "city", rs.Build()[0].Attribute())

	rs.ClearErr()
	assert.NoError(t, rs.Err())
}

func TestWithValueWithoutFocus(t *testing.T) {
	rs := NewRuleSet().WithValue("US")
	assert.ErrorIs(t, rs.Err(), ErrNoFocusAttribute)

	rs = NewRuleSet().WithPoints(1)
	assert.ErrorIs(t, rs.Err(), ErrNoFocusAttribute)

	var buildErr *BuildError
	require.ErrorAs(t, rs.Err(), &buildErr)
	assert.Equal(t, "with_points", buildErr.Op)
}

func TestWildcardValues(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("isp").WithAnyValue().WithPoints(2).
		ForAttribute("org").WithValue(models.AnyValue).WithPoints(4)
	require.NoError(t, rs.Err())

	built := rs.Build()
	require.Len(t, built, 2)
	assert.True(t, built[0].IsWildcard())
	assert.True(t, built[1].IsWildcard())

	assert.Equal(t, models.RuleTable{
		"isp": {models.AnyValue: 2},
		"org": {models.AnyValue: 4},
	}, rs.Table())
}

func TestBuildIsNonDestructive(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)

	first := rs.Build()
	second := rs.Build()
	assert.Equal(t, first, second)

	first[0] = nil
	assert.NotNil(t, rs.Build()[0])
}

func TestCloneRuleAt(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("country").WithValue("US", "UK").WithPoints(10).
		ForAttribute("isp").WithValue("ISP1").WithPoints(15)
	require.NoError(t, rs.Err())
	original := rs.Build()

	for i := range original {
		clone, err := rs.CloneRuleAt(i)
		require.NoError(t, err)

		cloned := clone.Build()
		require.Len(t, cloned, len(original)+1)
		for j := range original {
			assert.True(t, original[j].Equal(cloned[j]))
			assert.NotSame(t, original[j], cloned[j])
		}
		assert.True(t, original[i].Equal(cloned[len(original)]))
	}

	assert.Equal(t, original, rs.Build())
}

func TestCloneRuleAtOutOfRange(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)

	for _, index := range []int{-1, 1, 100} {
		clone, err := rs.CloneRuleAt(index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Nil(t, clone)
	}

	_, err := NewRuleSet().CloneRuleAt(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCloneDoesNotShareMutations(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)
	clone, err := rs.CloneRuleAt(0)
	require.NoError(t, err)

	require.NoError(t, clone.Build()[0].SetPoints(99))
	assert.Equal(t, 10, rs.Build()[0].Points())
}

func TestAddRule(t *testing.T) {
	rs := NewRuleSet()
	r, err := models.NewValueRule("country", "US", 10)
	require.NoError(t, err)

	require.NoError(t, rs.AddRule(r))
	assert.Same(t, r, rs.Build()[0])
	assert.ErrorIs(t, rs.AddRule(nil), ErrInvalidRule)
}
