package domain

// IntentKind identifies the class of a UI-emitted intent.
type IntentKind string

const (
	KindNavigate    IntentKind = "navigate"
	KindAction      IntentKind = "action"
	KindInteraction IntentKind = "interaction"
)

// Intent is a request emitted by the UI layer. It carries no logic itself;
// the router decides what (if anything) happens.
//
// The set of implementations is closed: Navigate, DomainAction, Interaction.
type Intent interface {
	Kind() IntentKind
}

// Navigate requests a route change.
type Navigate struct {
	To string `json:"to" mapstructure:"to"`
}

func (Navigate) Kind() IntentKind { return KindNavigate }

// DomainAction requests execution of a named action. Names beginning with
// "state:" are treated by the router as direct state-mutation shorthand.
type DomainAction struct {
	Name   string         `json:"name" mapstructure:"name"`
	Params map[string]any `json:"params,omitempty" mapstructure:"params"`
}

func (DomainAction) Kind() IntentKind { return KindAction }

// Interaction is an observational record (scroll, hover, tap). It never
// triggers a handler; it is appended to the log verbatim.
type Interaction struct {
	Source string         `json:"source,omitempty" mapstructure:"source"`
	Detail map[string]any `json:"detail,omitempty" mapstructure:"detail"`
}

func (Interaction) Kind() IntentKind { return KindInteraction }

// ActionPrefixState is the reserved prefix for direct state mutations.
// "state:journal.set" appends a "journal.set" event with the action params.
const ActionPrefixState = "state:"

// ActionSetCapabilityLevel is the only sanctioned mutator of the capability
// profile. Payload: {domain, level}.
const ActionSetCapabilityLevel = "diagnostics:setCapabilityLevel"
