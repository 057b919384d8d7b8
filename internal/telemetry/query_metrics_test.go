package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyToBucket(t *testing.T) {
	tests := []struct {
		latency time.Duration
		expect  LatencyBucket
	}{
		{500 * time.Microsecond, BucketP1},
		{5 * time.Millisecond, BucketP10},
		{20 * time.Millisecond, BucketP50},
		{75 * time.Millisecond, BucketP100},
		{time.Second, BucketSlow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, LatencyToBucket(tt.latency), tt.latency.String())
	}
}

func TestCircularBuffer_EvictsOldest(t *testing.T) {
	// Given: a buffer of capacity 3
	buf := NewCircularBuffer[string](3)

	// When: adding four items
	for _, s := range []string{"a", "b", "c", "d"} {
		buf.Add(s)
	}

	// Then: the oldest is gone and order is FIFO
	assert.Equal(t, []string{"b", "c", "d"}, buf.Items())
	assert.Equal(t, 3, buf.Size())
}

func TestCircularBuffer_Empty(t *testing.T) {
	buf := NewCircularBuffer[int](0)
	assert.Empty(t, buf.Items())
	assert.NotNil(t, buf.Items())
}

func TestExtractTerms(t *testing.T) {
	assert.Equal(t, []string{"snow", "depth"}, ExtractTerms("  Snow DEPTH "))
	assert.Nil(t, ExtractTerms("   "))
}

func TestQueryMetrics_Record(t *testing.T) {
	// Given: a collector
	m := NewQueryMetrics()

	// When: recording a mix of queries
	m.Record(QueryEvent{Query: "", Kind: QueryKindListAll, ResultCount: 4})
	m.Record(QueryEvent{Query: "heat", Kind: QueryKindText, ResultCount: 2, Latency: 2 * time.Millisecond})
	m.Record(QueryEvent{Query: "Heat wave", Kind: QueryKindText, ResultCount: 1})
	m.Record(QueryEvent{Query: "zzz", Kind: QueryKindText, ResultCount: 0})
	m.Record(QueryEvent{Query: "HEAT ", Kind: QueryKindText, ResultCount: 2})

	// Then: the snapshot aggregates them
	s := m.Snapshot()
	assert.Equal(t, int64(5), s.TotalQueries)
	assert.Equal(t, int64(1), s.KindCounts[QueryKindListAll])
	assert.Equal(t, int64(4), s.KindCounts[QueryKindText])
	assert.Equal(t, int64(1), s.ZeroResultCount)
	assert.Equal(t, []string{"zzz"}, s.ZeroResultQueries)
	assert.InDelta(t, 20.0, s.ZeroResultPercentage(), 0.001)
	assert.Equal(t, int64(1), s.RepeatCount)
	assert.Equal(t, int64(1), s.LatencyDistribution[BucketP10])

	require.NotEmpty(t, s.TopTerms)
	assert.Equal(t, TermCount{Term: "heat", Count: 3}, s.TopTerms[0])
}

func TestQueryMetrics_TopTermsBounded(t *testing.T) {
	m := NewQueryMetricsWithConfig(QueryMetricsConfig{TopTermsCapacity: 2})

	m.Record(QueryEvent{Query: "a b c", Kind: QueryKindText})

	assert.Len(t, m.Snapshot().TopTerms, 2)
}

func TestQueryMetrics_Concurrent(t *testing.T) {
	m := NewQueryMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(QueryEvent{Query: "frost", Kind: QueryKindText, ResultCount: 1})
			_ = m.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), m.Snapshot().TotalQueries)
}

func TestZeroResultPercentage_NoQueries(t *testing.T) {
	assert.Zero(t, NewQueryMetrics().Snapshot().ZeroResultPercentage())
}
