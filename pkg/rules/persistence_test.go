package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rs := NewRuleSet().
		ForAttribute("country").WithValue("US").WithPoints(10).WithValue("UK").WithPoints(20).
		ForAttribute("isp").WithValue("ISP1", "ISP2").WithPoints(15).
		ForAttribute("asn").WithValue("15169").WithPoints(30)
	require.NoError(t, rs.Err())

	extra, _ := models.NewValueRule("city", "Los Angeles", 8)
	require.NoError(t, rs.AddRuleToGroup("cities", extra))

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, rs.SaveToJSON(path))

	loaded := NewRuleSet()
	report, err := loaded.LoadFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Loaded)
	assert.Empty(t, report.Skipped)

	assert.Equal(t, rs.Table(), loaded.Table())
	assert.Empty(t, loaded.GroupNames())
}

func TestSaveWritesFlattenedLayout(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)
	override, _ := models.NewValueRule("country", "US", 50)
	require.NoError(t, rs.AddRuleToGroup("g", override))

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, rs.SaveToJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]map[string]int{"country": {"US": 50}}, decoded)
}

func TestWildcardRoundTrip(t *testing.T) {
	rs := NewRuleSet().ForAttribute("org").WithAnyValue().WithPoints(4)
	require.NoError(t, rs.Err())

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, rs.SaveToJSON(path))

	loaded := NewRuleSet()
	_, err := loaded.LoadFromJSON(path)
	require.NoError(t, err)

	built := loaded.Build()
	require.Len(t, built, 1)
	assert.True(t, built[0].IsWildcard())
	assert.Equal(t, 4, built[0].Points())
}

func TestSaveToJSONReportsWriteFailure(t *testing.T) {
	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)
	err := rs.SaveToJSON(filepath.Join(t.TempDir(), "missing", "rules.json"))
	assert.Error(t, err)
}

func TestLoadFromJSONFileNotFound(t *testing.T) {
	rs := NewRuleSet()
	report, err := rs.LoadFromJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Nil(t, report)
}

func TestLoadFromJSONMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"not json", `{"country": `},
		{"array", `[1, 2, 3]`},
		{"flat object", `{"country": "US"}`},
		{"string points", `{"country": {"US": "10"}}`},
		{"float points", `{"country": {"US": 1.5}}`},
		{"null points", `{"country": {"US": null}}`},
		{"trailing data", `{"country": {"US": 1}} {}`},
		{"valid entries first", `{"city": {"X": 1}, "country": {"US": "10"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rs := NewRuleSet()
			_, err := rs.LoadFromJSON(writeRuleFile(t, tc.content))
			assert.ErrorIs(t, err, ErrMalformedData)
			assert.Equal(t, 0, rs.Len())
		})
	}
}

func TestLoadFromJSONRejectsNegativePointsEntry(t *testing.T) {
	path := writeRuleFile(t, `{
		"city": {"Paris": 5},
		"country": {"US": 10, "UK": -3},
		"isp": {"ISP1": 1}
	}`)

	rs := NewRuleSet()
	report, err := rs.LoadFromJSON(path)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Loaded)
	assert.Equal(t, []string{"country[UK]"}, report.Rejected)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, models.RuleTable{
		"city":    {"Paris": 5},
		"country": {"US": 10},
		"isp":     {"ISP1": 1},
	}, rs.Table())

	// Same outcome as the equivalent builder chain, minus its recorded error.
	chained := NewRuleSet().
		ForAttribute("city").WithValue("Paris").WithPoints(5).
		ForAttribute("country").WithValue("UK").WithPoints(-3).
		WithValue("US").WithPoints(10).
		ForAttribute("isp").WithValue("ISP1").WithPoints(1)
	assert.ErrorIs(t, chained.Err(), ErrInvalidRule)
	assert.Equal(t, chained.Table(), rs.Table())
}

func TestLoadFromJSONSkipsUnknownAttributes(t *testing.T) {
	path := writeRuleFile(t, `{
		"country": {"US": 10},
		"planet": {"Mars": 99},
		"isp": {"ISP1": 15}
	}`)

	rs := NewRuleSet()
	report, err := rs.LoadFromJSON(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"planet"}, report.Skipped)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, models.RuleTable{
		"country": {"US": 10},
		"isp":     {"ISP1": 15},
	}, rs.Table())
}

func TestLoadFromJSONAppendsSorted(t *testing.T) {
	path := writeRuleFile(t, `{"region": {"NY": 5, "CA": 8}, "city": {"X": 1}}`)

	rs := NewRuleSet().ForAttribute("country").WithValue("US").WithPoints(10)
	_, err := rs.LoadFromJSON(path)
	require.NoError(t, err)

	built := rs.Build()
	require.Len(t, built, 4)
	got := make([]string, 0, len(built))
	for _, r := range built {
		v, _ := r.Value()
		got = append(got, r.Attribute()+"="+v)
	}
	assert.Equal(t, []string{"country=US", "city=X", "region=CA", "region=NY"}, got)
}
