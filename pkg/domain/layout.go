package domain

// Arrangement is the inner arrangement strategy of a component layout.
type Arrangement string

const (
	ArrangementColumn  Arrangement = "column"
	ArrangementRow     Arrangement = "row"
	ArrangementGrid    Arrangement = "grid"
	ArrangementStacked Arrangement = "stacked"
)

// LayoutType scopes requirement entries.
type LayoutType string

const (
	LayoutSection LayoutType = "section"
	LayoutCard    LayoutType = "card"
	LayoutOrgan   LayoutType = "organ"
)

// PageLayout describes section/page placement only: where a node sits on the
// page, never how its children are arranged.
type PageLayout struct {
	ContainerWidth    string `json:"container_width" yaml:"container_width" mapstructure:"container_width"`
	Split             string `json:"split,omitempty" yaml:"split,omitempty" mapstructure:"split"`
	BackgroundVariant string `json:"background_variant,omitempty" yaml:"background_variant,omitempty" mapstructure:"background_variant"`
}

// ComponentLayout describes the inner arrangement of a node's children.
// It shares its id with the page layout of the same node; the two registries
// are merged at resolution time.
type ComponentLayout struct {
	Type   Arrangement    `json:"type" yaml:"type" mapstructure:"type"`
	Preset string         `json:"preset,omitempty" yaml:"preset,omitempty" mapstructure:"preset"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Definition is a fully resolved layout: the page placement plus, when one
// exists for the same id, the component arrangement.
type Definition struct {
	ID string `json:"id"`
	PageLayout
	MoleculeLayout *ComponentLayout `json:"molecule_layout,omitempty"`
}

// Ref addresses a layout: either an explicit id, or a template/slot pair
// resolved through the catalog's template maps.
type Ref struct {
	ID       string `json:"id,omitempty" mapstructure:"id"`
	Template string `json:"template,omitempty" mapstructure:"template"`
	Slot     string `json:"slot,omitempty" mapstructure:"slot"`
}

// RefID is shorthand for a Ref with an explicit id.
func RefID(id string) Ref { return Ref{ID: id} }

// ResolveContext carries per-node context into layout resolution and overlay
// application. All fields are optional.
type ResolveContext struct {
	// TemplateID enables the per-template default id fallback when the Ref
	// carries neither an id nor a template/slot pair.
	TemplateID string `json:"template_id,omitempty" mapstructure:"template_id"`

	// MoleculeType selects the visual preset (first overlay layer).
	MoleculeType string `json:"molecule_type,omitempty" mapstructure:"molecule_type"`

	// Experience selects the preset default when the molecule type has none.
	Experience string `json:"experience,omitempty" mapstructure:"experience"`

	// Scope selects the spacing scale (section- or card-scoped rhythm).
	Scope LayoutType `json:"scope,omitempty" mapstructure:"scope"`
}

// RequirementKey addresses a required-slot entry. For organ layouts OrganID
// is set and ID is the organ's internal layout id.
type RequirementKey struct {
	Type    LayoutType
	ID      string
	OrganID string
}

// Catalog is the full set of layout authoring data, loaded once from the
// manifest and treated as immutable afterwards.
type Catalog struct {
	// Pages and Components are independent registries sharing an id space.
	Pages      map[string]PageLayout
	Components map[string]ComponentLayout

	// TemplateSlots maps template -> slot -> layout id; TemplateDefaults
	// maps template -> fallback layout id.
	TemplateSlots    map[string]map[string]string
	TemplateDefaults map[string]string

	// Children lists the child layout ids structurally permitted under a
	// parent id. Unknown parents yield nothing (fail closed); a present but
	// empty entry means "no child layout applies".
	Children map[string][]string

	// Requirements lists the slot names a node must supply for a layout.
	// Absent entries mean "always satisfied".
	Requirements map[RequirementKey][]string

	// Presets are named visual parameter sets; MoleculePresets and
	// ExperiencePresets choose one by molecule type or experience.
	Presets           map[string]map[string]any
	MoleculePresets   map[string]string
	ExperiencePresets map[string]string

	// Spacing holds the vertical-rhythm overrides keyed by scope.
	Spacing map[LayoutType]map[string]any
}

// NewCatalog returns an empty catalog with all maps initialized.
func NewCatalog() *Catalog {
	return &Catalog{
		Pages:             make(map[string]PageLayout),
		Components:        make(map[string]ComponentLayout),
		TemplateSlots:     make(map[string]map[string]string),
		TemplateDefaults:  make(map[string]string),
		Children:          make(map[string][]string),
		Requirements:      make(map[RequirementKey][]string),
		Presets:           make(map[string]map[string]any),
		MoleculePresets:   make(map[string]string),
		ExperiencePresets: make(map[string]string),
		Spacing:           make(map[LayoutType]map[string]any),
	}
}
