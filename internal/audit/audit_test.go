package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	require.NoError(t, r.Record(context.Background(), &Entry{Action: ActionOrderCreated, EntityID: "o1"}))

	entries, err := r.History(context.Background(), "o1", 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
