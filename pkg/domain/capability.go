package domain

import (
	"fmt"
	"sync"
)

// Level is a coarse permission grade for one functional domain.
type Level string

const (
	LevelOff      Level = "off"
	LevelBasic    Level = "basic"
	LevelAdvanced Level = "advanced"
	LevelLite     Level = "lite"
	LevelFull     Level = "full"
	LevelOn       Level = "on"
)

// levelOrder fixes the ordinal scale used for MinLevel comparisons.
// The ordering is historical (note that "lite" outranks "advanced") and is
// preserved as observed behaviour.
var levelOrder = []Level{LevelOff, LevelBasic, LevelAdvanced, LevelLite, LevelFull, LevelOn}

// Rank returns the position of the level on the ordinal scale, or -1 for an
// unknown level.
func (l Level) Rank() int {
	for i, known := range levelOrder {
		if l == known {
			return i
		}
	}
	return -1
}

// ParseLevel validates a level token.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if l.Rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return l, nil
}

// Rule gates actions of one domain. An empty MinLevel means "any level except
// off". Exact-name rules take precedence over the longest matching prefix.
type Rule struct {
	Domain   string `yaml:"domain" mapstructure:"domain"`
	MinLevel Level  `yaml:"min_level,omitempty" mapstructure:"min_level"`
}

// RuleSet binds rules to action names (exact) and name prefixes.
type RuleSet struct {
	Exact  map[string]Rule
	Prefix map[string]Rule
}

// Profile maps domain names to their current capability level. It is
// initialized at start and mutated only through the
// diagnostics:setCapabilityLevel action; the lock exists because ops
// surfaces (HTTP, CLI inspect) read it outside the dispatch turn.
type Profile struct {
	mu     sync.RWMutex
	levels map[string]Level
}

// NewProfile creates a profile from initial levels (may be nil).
func NewProfile(initial map[string]Level) *Profile {
	levels := make(map[string]Level, len(initial))
	for k, v := range initial {
		levels[k] = v
	}
	return &Profile{levels: levels}
}

// Level returns the configured level for a domain.
func (p *Profile) Level(domain string) (Level, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	l, ok := p.levels[domain]
	return l, ok
}

// Set updates the level for a domain.
func (p *Profile) Set(domain string, level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels[domain] = level
}

// Snapshot returns a copy of all configured levels.
func (p *Profile) Snapshot() map[string]Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Level, len(p.levels))
	for k, v := range p.levels {
		out[k] = v
	}
	return out
}
