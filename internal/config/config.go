// Package config loads the declarative runtime manifest: layout registries,
// presets, spacing scales, the token palette, capability rules and serve
// settings, all from one YAML document.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/domain"
)

// Manifest mirrors the YAML document.
type Manifest struct {
	Layouts           LayoutsSection            `yaml:"layouts"`
	Presets           map[string]map[string]any `yaml:"presets"`
	MoleculePresets   map[string]string         `yaml:"molecule_presets"`
	ExperiencePresets map[string]string         `yaml:"experience_presets"`
	Spacing           map[string]map[string]any `yaml:"spacing"`
	Palette           map[string]any            `yaml:"palette"`
	Capabilities      CapabilitiesSection       `yaml:"capabilities"`
	Serve             ServeSection              `yaml:"serve"`
}

// LayoutsSection holds the two layout registries and the structural maps
// around them.
type LayoutsSection struct {
	Pages        map[string]domain.PageLayout      `yaml:"pages"`
	Components   map[string]domain.ComponentLayout `yaml:"components"`
	Templates    map[string]TemplateSection        `yaml:"templates"`
	Children     map[string][]string               `yaml:"children"`
	Requirements []RequirementEntry                `yaml:"requirements"`
}

// TemplateSection maps slots to layout ids, with an optional default.
type TemplateSection struct {
	Slots   map[string]string `yaml:"slots"`
	Default string            `yaml:"default,omitempty"`
}

// RequirementEntry lists the slots a node must supply for one layout.
type RequirementEntry struct {
	Type  string   `yaml:"type"`            // section | card | organ
	ID    string   `yaml:"id"`              // layout id (internal id for organs)
	Organ string   `yaml:"organ,omitempty"` // required when type is organ
	Slots []string `yaml:"slots"`
}

// CapabilitiesSection holds initial levels and gating rules.
type CapabilitiesSection struct {
	Levels map[string]string `yaml:"levels"`
	Rules  []RuleEntry       `yaml:"rules"`
}

// RuleEntry binds a rule to an exact action name or a name prefix
// (exactly one of Action / Prefix must be set).
type RuleEntry struct {
	Action   string `yaml:"action,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	Domain   string `yaml:"domain"`
	MinLevel string `yaml:"min_level,omitempty"`
}

// ServeSection configures the ops HTTP surface and the persistence backend.
type ServeSection struct {
	Addr  string       `yaml:"addr,omitempty"`
	Log   string       `yaml:"log,omitempty"` // file sink path; ignored when redis is set
	Redis RedisSection `yaml:"redis,omitempty"`
}

// RedisSection configures the redis event sink.
type RedisSection struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a manifest from YAML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Catalog builds the layout catalog from the manifest.
func (m *Manifest) Catalog() (*domain.Catalog, error) {
	cat := domain.NewCatalog()

	for id, page := range m.Layouts.Pages {
		cat.Pages[id] = page
	}
	for id, comp := range m.Layouts.Components {
		switch comp.Type {
		case domain.ArrangementColumn, domain.ArrangementRow, domain.ArrangementGrid, domain.ArrangementStacked:
		default:
			return nil, fmt.Errorf("component layout %q: unknown arrangement %q", id, comp.Type)
		}
		cat.Components[id] = comp
	}

	for template, section := range m.Layouts.Templates {
		if len(section.Slots) > 0 {
			slots := make(map[string]string, len(section.Slots))
			for slot, id := range section.Slots {
				slots[slot] = id
			}
			cat.TemplateSlots[template] = slots
		}
		if section.Default != "" {
			cat.TemplateDefaults[template] = section.Default
		}
	}

	for parent, children := range m.Layouts.Children {
		cat.Children[parent] = append([]string(nil), children...)
	}

	for _, entry := range m.Layouts.Requirements {
		key, err := requirementKey(entry)
		if err != nil {
			return nil, err
		}
		cat.Requirements[key] = append([]string(nil), entry.Slots...)
	}

	for name, params := range m.Presets {
		cat.Presets[name] = params
	}
	for molecule, preset := range m.MoleculePresets {
		cat.MoleculePresets[molecule] = preset
	}
	for experience, preset := range m.ExperiencePresets {
		cat.ExperiencePresets[experience] = preset
	}
	for scope, params := range m.Spacing {
		cat.Spacing[domain.LayoutType(scope)] = params
	}

	return cat, nil
}

func requirementKey(entry RequirementEntry) (domain.RequirementKey, error) {
	t := domain.LayoutType(entry.Type)
	switch t {
	case domain.LayoutSection, domain.LayoutCard:
		return domain.RequirementKey{Type: t, ID: entry.ID}, nil
	case domain.LayoutOrgan:
		if entry.Organ == "" {
			return domain.RequirementKey{}, fmt.Errorf("organ requirement %q: missing organ id", entry.ID)
		}
		return domain.RequirementKey{Type: t, ID: entry.ID, OrganID: entry.Organ}, nil
	default:
		return domain.RequirementKey{}, fmt.Errorf("requirement %q: unknown layout type %q", entry.ID, entry.Type)
	}
}

// CompilePalette compiles the palette section.
func (m *Manifest) CompilePalette() *domain.Palette {
	return domain.CompilePalette(m.Palette)
}

// Rules builds the gating rule set.
func (m *Manifest) Rules() (domain.RuleSet, error) {
	rules := domain.RuleSet{
		Exact:  make(map[string]domain.Rule),
		Prefix: make(map[string]domain.Rule),
	}

	for i, entry := range m.Capabilities.Rules {
		if (entry.Action == "") == (entry.Prefix == "") {
			return rules, fmt.Errorf("capability rule %d: exactly one of action/prefix must be set", i)
		}
		if entry.Domain == "" {
			return rules, fmt.Errorf("capability rule %d: missing domain", i)
		}

		rule := domain.Rule{Domain: entry.Domain}
		if entry.MinLevel != "" {
			level, err := domain.ParseLevel(entry.MinLevel)
			if err != nil {
				return rules, fmt.Errorf("capability rule %d: %w", i, err)
			}
			rule.MinLevel = level
		}

		if entry.Action != "" {
			rules.Exact[entry.Action] = rule
		} else {
			rules.Prefix[entry.Prefix] = rule
		}
	}
	return rules, nil
}

// Levels parses the initial capability levels.
func (m *Manifest) Levels() (map[string]domain.Level, error) {
	levels := make(map[string]domain.Level, len(m.Capabilities.Levels))
	for name, raw := range m.Capabilities.Levels {
		level, err := domain.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("capability domain %q: %w", name, err)
		}
		levels[name] = level
	}
	return levels, nil
}

// Validate cross-checks the manifest: every structural reference must name a
// known layout id or preset, and every palette reference must reach a
// terminal value within the resolver's depth bound.
func (m *Manifest) Validate() error {
	var problems []error

	cat, err := m.Catalog()
	if err != nil {
		// Without a catalog the reference checks below are meaningless.
		return err
	}
	if _, err := m.Rules(); err != nil {
		problems = append(problems, err)
	}
	if _, err := m.Levels(); err != nil {
		problems = append(problems, err)
	}

	knownPage := func(id string) bool {
		_, ok := cat.Pages[id]
		return ok
	}
	knownPreset := func(name string) bool {
		_, ok := cat.Presets[name]
		return ok
	}

	for id := range cat.Components {
		if !knownPage(id) {
			problems = append(problems, fmt.Errorf("component layout %q: %w (no page counterpart)", id, domain.ErrUnknownLayout))
		}
	}
	for template, slots := range cat.TemplateSlots {
		for slot, id := range slots {
			if !knownPage(id) {
				problems = append(problems, fmt.Errorf("template %q slot %q: %w: %q", template, slot, domain.ErrUnknownLayout, id))
			}
		}
	}
	for template, id := range cat.TemplateDefaults {
		if !knownPage(id) {
			problems = append(problems, fmt.Errorf("template %q default: %w: %q", template, domain.ErrUnknownLayout, id))
		}
	}
	for parent, children := range cat.Children {
		if !knownPage(parent) {
			problems = append(problems, fmt.Errorf("compatibility parent: %w: %q", domain.ErrUnknownLayout, parent))
		}
		for _, child := range children {
			if !knownPage(child) {
				problems = append(problems, fmt.Errorf("compatibility child of %q: %w: %q", parent, domain.ErrUnknownLayout, child))
			}
		}
	}
	for key := range cat.Requirements {
		// Organ internal ids live outside the page registry.
		if key.Type != domain.LayoutOrgan && !knownPage(key.ID) {
			problems = append(problems, fmt.Errorf("requirement for %s %q: %w", key.Type, key.ID, domain.ErrUnknownLayout))
		}
	}

	for id, comp := range cat.Components {
		if comp.Preset != "" && !knownPreset(comp.Preset) {
			problems = append(problems, fmt.Errorf("component layout %q: unknown preset %q", id, comp.Preset))
		}
	}
	for molecule, preset := range cat.MoleculePresets {
		if !knownPreset(preset) {
			problems = append(problems, fmt.Errorf("molecule preset %q: unknown preset %q", molecule, preset))
		}
	}
	for experience, preset := range cat.ExperiencePresets {
		if !knownPreset(preset) {
			problems = append(problems, fmt.Errorf("experience preset %q: unknown preset %q", experience, preset))
		}
	}

	problems = append(problems, m.validatePalette()...)

	return errors.Join(problems...)
}

// validatePalette walks every authored reference and requires it to reach a
// terminal value. The runtime resolver tolerates cycles; authoring them is
// still a mistake worth surfacing.
func (m *Manifest) validatePalette() []error {
	pal := m.CompilePalette()
	var problems []error
	walkPaletteRefs("", m.Palette, func(at, ref string) {
		if !terminalWithinBound(pal, ref) {
			problems = append(problems, fmt.Errorf("palette token %q: reference %q does not resolve to a value", at, ref))
		}
	})
	return problems
}

func walkPaletteRefs(prefix string, node map[string]any, visit func(at, ref string)) {
	for key, value := range node {
		at := key
		if prefix != "" {
			at = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			walkPaletteRefs(at, v, visit)
		case string:
			if domain.IsTokenPath(v) {
				visit(at, v)
			}
		}
	}
}

func terminalWithinBound(pal *domain.Palette, path string) bool {
	for i := 0; i < 5; i++ {
		value, ok := pal.Lookup(path)
		if !ok {
			return false
		}
		switch v := value.(type) {
		case domain.Literal:
			return true
		case domain.Reference:
			path = v.Path
		}
	}
	return false
}
