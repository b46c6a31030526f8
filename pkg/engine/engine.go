package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gokaycavdar/go-ipreputation/pkg/geoip"
	"github.com/gokaycavdar/go-ipreputation/pkg/models"
	"github.com/gokaycavdar/go-ipreputation/pkg/rules"
	"github.com/gokaycavdar/go-ipreputation/pkg/storage"
)

// Scorer reduces an IP's geolocation attributes to an integer reputation
// score.
//
// Architecture Principles:
//   - Blacklist first: a listed IP scores 0 and no lookup is made
//   - Provider-agnostic: the caller supplies the geolocation Provider
//   - Explainable: Evaluate itemises every table entry that fired
//   - Isolated: the rule table is copied at construction, so later edits to
//     the source RuleSet or table never leak into a running scorer
//
// Concurrent Score/Evaluate calls are safe. AddToBlacklist is safe as far as
// the underlying store is.
//
// Usage:
//
//	scorer := engine.NewFromRuleSet(ruleSet, storage.NewMemoryStore())
//	score, err := scorer.Score(ctx, "8.8.8.8", provider)
type Scorer struct {
	table     models.RuleTable
	blacklist storage.BlacklistStore

	// attributes is the table's attribute list in sorted order so that
	// Matches come out deterministic.
	attributes []string
}

// New creates a scorer over a private copy of table. A nil store gets a
// fresh in-memory blacklist.
func New(table models.RuleTable, blacklist storage.BlacklistStore) *Scorer {
	if blacklist == nil {
		blacklist = storage.NewMemoryStore()
	}
	cp := table.Clone()

	attributes := make([]string, 0, len(cp))
	for attr := range cp {
		attributes = append(attributes, attr)
	}
	sort.Strings(attributes)

	return &Scorer{
		table:      cp,
		blacklist:  blacklist,
		attributes: attributes,
	}
}

// NewFromRuleSet flattens rs and creates a scorer over the result.
func NewFromRuleSet(rs *rules.RuleSet, blacklist storage.BlacklistStore) *Scorer {
	return New(rs.Table(), blacklist)
}

// Table returns a copy of the scorer's rule table.
func (s *Scorer) Table() models.RuleTable {
	return s.table.Clone()
}

// IsBlacklisted reports whether ip is listed under any reason.
func (s *Scorer) IsBlacklisted(ctx context.Context, ip string) (bool, error) {
	listed, err := s.blacklist.Contains(ctx, ip)
	if err != nil {
		return false, fmt.Errorf("blacklist check: %w", err)
	}
	return listed, nil
}

// AddToBlacklist lists ip under reason.
func (s *Scorer) AddToBlacklist(ctx context.Context, reason, ip string) error {
	if err := s.blacklist.Add(ctx, reason, ip); err != nil {
		return fmt.Errorf("blacklist add: %w", err)
	}
	logrus.WithFields(logrus.Fields{"reason": reason, "ip": ip}).Info("IP blacklisted")
	return nil
}

// Score returns the reputation score of ip. See Evaluate.
func (s *Scorer) Score(ctx context.Context, ip string, provider geoip.Provider) (int, error) {
	result, err := s.Evaluate(ctx, ip, provider)
	if err != nil {
		return 0, err
	}
	return result.Score, nil
}

// Evaluate scores ip and reports how the score was reached.
//
//  1. A blacklisted ip returns a zero result immediately; provider is never
//     called.
//  2. Otherwise the attribute bag is resolved through provider. Lookup
//     failures, including a nil provider, match geoip.ErrLookup and are
//     never converted into a zero score.
//  3. For each table attribute present in the bag, an entry with the same
//     value adds its points and a models.AnyValue entry adds its points too.
//     Absent attributes contribute nothing.
func (s *Scorer) Evaluate(ctx context.Context, ip string, provider geoip.Provider) (*models.ReputationResult, error) {
	result := &models.ReputationResult{
		IP:      ip,
		Matches: make([]models.Match, 0),
	}

	listed, err := s.IsBlacklisted(ctx, ip)
	if err != nil {
		return nil, err
	}
	if listed {
		result.Blacklisted = true
		logrus.WithField("ip", ip).Debug("Blacklisted IP, skipping lookup")
		return result, nil
	}

	if provider == nil {
		return nil, fmt.Errorf("%w: no provider for %s", geoip.ErrLookup, ip)
	}
	bag, err := provider.Resolve(ctx, ip)
	if err != nil {
		return nil, err
	}

	for _, attr := range s.attributes {
		value, present := bag.Get(attr)
		if !present {
			continue
		}
		values := s.table[attr]

		if points, ok := values[value]; ok && value != models.AnyValue {
			result.Score += points
			result.Matches = append(result.Matches, models.Match{Attribute: attr, Value: value, Points: points})
		}
		if points, ok := values[models.AnyValue]; ok {
			result.Score += points
			result.Matches = append(result.Matches, models.Match{Attribute: attr, Value: models.AnyValue, Points: points})
		}
	}

	logrus.WithFields(logrus.Fields{
		"ip":      ip,
		"score":   result.Score,
		"matches": len(result.Matches),
	}).Debug("IP scored")
	return result, nil
}
