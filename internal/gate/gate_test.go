package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/espalier/internal/gate"
	"github.com/aretw0/espalier/pkg/domain"
)

func newGate(levels map[string]domain.Level, rules domain.RuleSet) *gate.Gate {
	return gate.New(domain.NewProfile(levels), rules)
}

func TestGate_NoRuleAllows(t *testing.T) {
	g := newGate(map[string]domain.Level{"export": domain.LevelOff}, domain.RuleSet{})
	assert.True(t, g.Allowed("export:download"), "actions without rules are allowed")
}

func TestGate_OffRejectsUnconditionally(t *testing.T) {
	g := newGate(
		map[string]domain.Level{"export": domain.LevelOff},
		domain.RuleSet{
			Exact: map[string]domain.Rule{
				// Even with no MinLevel, off rejects.
				"export:download": {Domain: "export"},
			},
		},
	)
	assert.False(t, g.Allowed("export:download"))

	d := g.Evaluate("export:download")
	assert.Equal(t, "domain_off", d.Reason)
	assert.Equal(t, "export", d.Domain)
}

func TestGate_ExactOverridesPrefix(t *testing.T) {
	g := newGate(
		map[string]domain.Level{"export": domain.LevelBasic, "auth": domain.LevelOff},
		domain.RuleSet{
			Exact: map[string]domain.Rule{
				"export:download": {Domain: "export"},
			},
			Prefix: map[string]domain.Rule{
				"export:": {Domain: "auth"}, // would reject via auth=off
			},
		},
	)

	// Exact rule (export, basic) wins over the prefix rule (auth, off).
	assert.True(t, g.Allowed("export:download"))
	// Sibling actions fall through to the prefix rule and are rejected.
	assert.False(t, g.Allowed("export:share"))
}

func TestGate_LongestPrefixWins(t *testing.T) {
	g := newGate(
		map[string]domain.Level{"export": domain.LevelFull, "bulk": domain.LevelOff},
		domain.RuleSet{
			Prefix: map[string]domain.Rule{
				"export:":      {Domain: "export"},
				"export:bulk.": {Domain: "bulk"},
			},
		},
	)

	assert.True(t, g.Allowed("export:download"))
	assert.False(t, g.Allowed("export:bulk.archive"), "longer prefix rule governs")
}

func TestGate_MinLevelOrdinal(t *testing.T) {
	rules := domain.RuleSet{
		Exact: map[string]domain.Rule{
			"reports:generate": {Domain: "reports", MinLevel: domain.LevelLite},
		},
	}

	cases := []struct {
		level   domain.Level
		allowed bool
	}{
		{domain.LevelBasic, false},
		// "advanced" ranks below "lite" on the historical scale.
		{domain.LevelAdvanced, false},
		{domain.LevelLite, true},
		{domain.LevelFull, true},
		{domain.LevelOn, true},
	}
	for _, tc := range cases {
		g := newGate(map[string]domain.Level{"reports": tc.level}, rules)
		assert.Equal(t, tc.allowed, g.Allowed("reports:generate"), "level %s", tc.level)
	}
}

func TestGate_UnconfiguredDomainAllows(t *testing.T) {
	g := newGate(nil, domain.RuleSet{
		Exact: map[string]domain.Rule{
			"export:download": {Domain: "export", MinLevel: domain.LevelFull},
		},
	})
	assert.True(t, g.Allowed("export:download"), "rules over unconfigured domains do not restrict")
}
