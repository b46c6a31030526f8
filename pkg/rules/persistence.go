package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// DefaultRuleFile is the file name used when no path is configured.
const DefaultRuleFile = "custom_rules.json"

// LoadReport summarises a LoadFromJSON call.
type LoadReport struct {
	Path string

	// Loaded is the number of rules appended to the master list.
	Loaded int

	// Skipped lists attributes in the file that are not recognized. Their
	// rules were ignored and the rest of the file was still loaded.
	Skipped []string

	// Rejected lists "attribute[value]" entries whose rule was refused
	// (negative points). Only that entry was dropped.
	Rejected []string
}

// SaveToJSON writes the flattened rule table to path:
//
//	{ "<attribute>": { "<value>": <points> } }
//
// Wildcard rules are written under the models.AnyValue key.
func (rs *RuleSet) SaveToJSON(path string) (err error) {
	table := rs.Table()
	data, err := json.MarshalIndent(table, "", "    ")
	if err != nil {
		return newBuildError("save", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return newBuildError("save", fmt.Errorf("create %s: %w", path, err))
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = newBuildError("save", fmt.Errorf("close %s: %w", path, cerr))
		}
	}()

	if _, err = file.Write(data); err != nil {
		return newBuildError("save", fmt.Errorf("write %s: %w", path, err))
	}

	logrus.WithField("path", path).Infof("Rules saved (%d attributes)", len(table))
	return nil
}

// LoadFromJSON reads a rule file written by SaveToJSON and appends one rule
// per (attribute, value, points) entry, as ForAttribute/WithValue/WithPoints
// would. Attributes and values are applied in sorted order.
//
// Unknown attributes and entries with negative points are dropped with a
// warning and listed in the report; the rest of the file still loads. A
// missing file (ErrFileNotFound) or bad JSON and non-integer points
// (ErrMalformedData) abort the load without adding a single rule.
func (rs *RuleSet) LoadFromJSON(path string) (*LoadReport, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newBuildError("load", fmt.Errorf("%w: %s", ErrFileNotFound, path))
		}
		return nil, newBuildError("load", fmt.Errorf("open %s: %w", path, err))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, newBuildError("load", fmt.Errorf("read %s: %w", path, err))
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, newBuildError("load", fmt.Errorf("%w: %s: %v", ErrMalformedData, path, err))
	}

	report := &LoadReport{Path: path}
	staged := make([]*models.Rule, 0)

	for _, attribute := range sortedKeys(raw) {
		if !models.IsValidAttribute(attribute) {
			logrus.WithFields(logrus.Fields{
				"path":      path,
				"attribute": attribute,
			}).Warn("Skipping rules for unknown attribute")
			report.Skipped = append(report.Skipped, attribute)
			continue
		}

		values := raw[attribute]
		for _, value := range sortedKeys(values) {
			var points int
			rawPoints := bytes.TrimSpace(values[value])
			if bytes.Equal(rawPoints, []byte("null")) || json.Unmarshal(rawPoints, &points) != nil {
				return nil, newBuildError("load", fmt.Errorf("%w: %s[%q]: points must be an integer", ErrMalformedData, attribute, value))
			}

			var v *string
			if value != models.AnyValue {
				v = &value
			}
			r, err := models.NewRule(attribute, v, points)
			if err != nil {
				entry := fmt.Sprintf("%s[%s]", attribute, value)
				logrus.WithFields(logrus.Fields{
					"path":  path,
					"entry": entry,
				}).WithError(err).Warn("Rejecting rule")
				report.Rejected = append(report.Rejected, entry)
				continue
			}
			staged = append(staged, r)
		}
	}

	rs.rules = append(rs.rules, staged...)
	report.Loaded = len(staged)

	logrus.WithFields(logrus.Fields{
		"path":     path,
		"loaded":   report.Loaded,
		"skipped":  len(report.Skipped),
		"rejected": len(report.Rejected),
	}).Info("Rules loaded")
	return report, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
