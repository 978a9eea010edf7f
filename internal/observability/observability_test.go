package observability_test

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/observability"
	"github.com/aretw0/espalier/pkg/ports"
)

func TestMetrics_CountsDispatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.OnDispatch("action", ports.OutcomeApplied)
	m.OnDispatch("action", ports.OutcomeApplied)
	m.OnDispatch("action", ports.OutcomeGated)
	m.OnResolution(ports.ResolutionStep{Stage: "resolve_id", Rule: "explicit_id"})

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)

	var applied float64
	for _, fam := range families {
		if fam.GetName() != "espalier_dispatches_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == ports.OutcomeApplied {
					applied = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(2), applied)
}

func TestTracer_RingEviction(t *testing.T) {
	tr := observability.NewTracer(3)

	for i := 0; i < 5; i++ {
		tr.OnResolution(ports.ResolutionStep{Stage: "resolve_id", Detail: fmt.Sprintf("s%d", i)})
	}

	recent := tr.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "s2", recent[0].Detail)
	assert.Equal(t, "s4", recent[2].Detail)
}

func TestTracer_PartialFill(t *testing.T) {
	tr := observability.NewTracer(8)
	tr.OnResolution(ports.ResolutionStep{Detail: "only"})

	recent := tr.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "only", recent[0].Detail)
}

func TestFanout(t *testing.T) {
	tr1 := observability.NewTracer(4)
	tr2 := observability.NewTracer(4)

	fan := observability.NewFanout(tr1, nil, tr2)
	fan.OnResolution(ports.ResolutionStep{Detail: "step"})
	fan.OnDispatch("action", ports.OutcomeApplied)

	assert.Len(t, tr1.Recent(), 1)
	assert.Len(t, tr2.Recent(), 1)
}
