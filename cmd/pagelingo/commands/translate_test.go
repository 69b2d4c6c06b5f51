package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelingo/pagelingo/internal/session"
)

func TestProgressNotifierSpinnerHandsOffToBar(t *testing.T) {
	n := newProgressNotifier("Loading document...")
	require.NotNil(t, n.spin)
	n.start()

	// First update arrives once the page count is known: the spinner
	// stops and the bar takes over.
	n.SessionUpdated(session.Snapshot{
		State:      session.StateProcessing,
		TotalPages: 3,
		Done:       0,
	})
	assert.Nil(t, n.spin)
	require.NotNil(t, n.bar)

	n.SessionUpdated(session.Snapshot{
		State:      session.StateProcessing,
		TotalPages: 3,
		Done:       2,
	})
	n.finish()
}

func TestProgressNotifierZeroPageDocument(t *testing.T) {
	n := newProgressNotifier("Loading document...")
	n.start()

	// A zero-page document completes without page updates: the spinner
	// still stops and no bar is created.
	n.SessionUpdated(session.Snapshot{
		State:      session.StateCompleted,
		TotalPages: 0,
	})
	assert.Nil(t, n.spin)
	assert.Nil(t, n.bar)
	n.finish()
}

func TestProgressNotifierFinishStopsSpinnerOnLoadFailure(t *testing.T) {
	n := newProgressNotifier("Loading document...")
	n.start()

	// A document-load failure never produces a page-count update; finish
	// must still tear the spinner down.
	n.finish()
	assert.Nil(t, n.spin)
	assert.Nil(t, n.bar)
}
