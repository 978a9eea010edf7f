package observability

import "github.com/aretw0/espalier/pkg/ports"

// Fanout forwards observer callbacks to every member.
type Fanout []ports.Observer

// NewFanout drops nil members.
func NewFanout(members ...ports.Observer) Fanout {
	out := make(Fanout, 0, len(members))
	for _, m := range members {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// OnDispatch implements ports.Observer.
func (f Fanout) OnDispatch(kind, outcome string) {
	for _, m := range f {
		m.OnDispatch(kind, outcome)
	}
}

// OnResolution implements ports.Observer.
func (f Fanout) OnResolution(step ports.ResolutionStep) {
	for _, m := range f {
		m.OnResolution(step)
	}
}
