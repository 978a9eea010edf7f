// Package gate implements per-domain capability gating. The gate runs on
// every dispatch, so it does no I/O: a rule lookup, a profile read, an
// ordinal comparison.
package gate

import (
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Gate decides whether a named action may execute under the current
// capability profile.
type Gate struct {
	profile *domain.Profile
	rules   domain.RuleSet
}

// New creates a gate over a profile and rule set. The profile is shared with
// the router, which mutates it through the sanctioned diagnostics action.
func New(profile *domain.Profile, rules domain.RuleSet) *Gate {
	if profile == nil {
		profile = domain.NewProfile(nil)
	}
	if rules.Exact == nil {
		rules.Exact = map[string]domain.Rule{}
	}
	if rules.Prefix == nil {
		rules.Prefix = map[string]domain.Rule{}
	}
	return &Gate{profile: profile, rules: rules}
}

// Decision explains a gate evaluation, for diagnostics and metrics.
type Decision struct {
	Allowed bool
	Domain  string // rule domain, empty when no rule matched
	Reason  string // "no_rule", "domain_off", "below_min_level", "allowed"
}

// Allowed reports whether the action may execute.
func (g *Gate) Allowed(actionName string) bool {
	return g.Evaluate(actionName).Allowed
}

// Evaluate applies the lookup order: exact rule, then the longest matching
// prefix rule, then default-allow.
func (g *Gate) Evaluate(actionName string) Decision {
	rule, ok := g.match(actionName)
	if !ok {
		return Decision{Allowed: true, Reason: "no_rule"}
	}

	level, configured := g.profile.Level(rule.Domain)
	if !configured {
		// A rule over an unconfigured domain does not restrict.
		return Decision{Allowed: true, Domain: rule.Domain, Reason: "allowed"}
	}

	if level == domain.LevelOff {
		return Decision{Allowed: false, Domain: rule.Domain, Reason: "domain_off"}
	}

	if rule.MinLevel != "" && level.Rank() < rule.MinLevel.Rank() {
		return Decision{Allowed: false, Domain: rule.Domain, Reason: "below_min_level"}
	}

	return Decision{Allowed: true, Domain: rule.Domain, Reason: "allowed"}
}

// match finds the governing rule: exact name first, then the longest
// registered prefix of the name.
func (g *Gate) match(actionName string) (domain.Rule, bool) {
	if rule, ok := g.rules.Exact[actionName]; ok {
		return rule, true
	}

	var (
		best    domain.Rule
		bestLen = -1
	)
	for prefix, rule := range g.rules.Prefix {
		if len(prefix) > bestLen && strings.HasPrefix(actionName, prefix) {
			best = rule
			bestLen = len(prefix)
		}
	}
	if bestLen < 0 {
		return domain.Rule{}, false
	}
	return best, true
}
