package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
)

// RunEventSinkContract verifies that an EventSink implementation honours the
// interface contract. Every sink adapter runs this suite.
func RunEventSinkContract(t *testing.T, sink EventSink) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		log, err := sink.LoadLog(ctx)
		require.NoError(t, err, "loading a fresh sink should not fail")
		assert.Empty(t, log)
	})

	t.Run("Save and Load", func(t *testing.T) {
		in := []domain.Event{
			{ID: "e1", Intent: domain.EventJournalSet, Payload: map[string]any{"key": "note", "value": "hi"}, At: time.Now().UTC().Truncate(time.Second)},
			{ID: "e2", Intent: domain.EventNavigate, Payload: map[string]any{"to": "home"}},
			{ID: "e3", Intent: domain.EventInteraction},
		}
		require.NoError(t, sink.SaveLog(ctx, in))

		out, err := sink.LoadLog(ctx)
		require.NoError(t, err)
		require.Len(t, out, 3)

		// Order and identity survive the round trip.
		for i := range in {
			assert.Equal(t, in[i].ID, out[i].ID)
			assert.Equal(t, in[i].Intent, out[i].Intent)
		}
		assert.Equal(t, "hi", out[0].Payload["value"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, sink.SaveLog(ctx, []domain.Event{{ID: "only", Intent: domain.EventValuesSet}}))

		out, err := sink.LoadLog(ctx)
		require.NoError(t, err)
		require.Len(t, out, 1, "SaveLog replaces the log wholesale")
		assert.Equal(t, "only", out[0].ID)
	})

	t.Run("Save Empty", func(t *testing.T) {
		require.NoError(t, sink.SaveLog(ctx, nil))
		out, err := sink.LoadLog(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
