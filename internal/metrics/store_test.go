package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundaysquad/sundaysquad/internal/database"
	"github.com/sundaysquad/sundaysquad/internal/metrics"
)

func TestCounterStore(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	store := metrics.New(db)

	store.Increment(metrics.CounterVotesCast)
	store.Increment(metrics.CounterVotesCast)
	store.Increment(metrics.CounterResultsSubmitted)

	counters, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, counters[metrics.CounterVotesCast])
	assert.Equal(t, 1, counters[metrics.CounterResultsSubmitted])
	_, ok := counters[metrics.CounterResultsFinalized]
	assert.False(t, ok)
}
