package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	byModel map[string][]float64
	err     error
	calls   []string
}

func (f *fakeQuerier) ComparablePrices(_ context.Context, _, brand, model string, _ time.Time, _ int) ([]float64, error) {
	f.calls = append(f.calls, brand+"/"+model)
	if f.err != nil {
		return nil, f.err
	}
	return f.byModel[model], nil
}

func TestTrimmedMean_SmallSampleUsesMedian(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 200.0, TrimmedMean([]float64{100, 200, 5000}))
	assert.Equal(t, 150.0, TrimmedMean([]float64{100, 200, 5000, 100}))
	assert.Equal(t, 42.0, TrimmedMean([]float64{42}))
	assert.Equal(t, 0.0, TrimmedMean(nil))
}

func TestTrimmedMean_DropsOutliers(t *testing.T) {
	t.Parallel()

	prices := []float64{100, 100, 100, 100, 100, 100, 100, 100, 1000, 2000}
	got := TrimmedMean(prices)
	assert.InDelta(t, 100, got, 1, "outliers must not skew the mean toward 2000")
}

func TestTrimmedMean_OrderInvariant(t *testing.T) {
	t.Parallel()

	a := []float64{2000, 100, 1000, 100, 100, 100, 100, 100, 100, 100}
	b := []float64{100, 100, 100, 100, 100, 100, 100, 100, 1000, 2000}
	assert.Equal(t, TrimmedMean(b), TrimmedMean(a))

	// The input slice itself stays untouched.
	assert.Equal(t, 2000.0, a[0])
}

func TestEstimate_PrimaryWindow(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{byModel: map[string][]float64{
		"submariner": {9000, 9000, 9000, 9000, 9000},
	}}
	e := NewEstimator(q)

	m := e.Estimate(context.Background(), "watch", "rolex", "submariner")
	require.NotNil(t, m)
	assert.Equal(t, 9000.0, m.Average)
	assert.Equal(t, 5, m.Samples)
	assert.True(t, m.FullWindow)
	assert.Equal(t, []string{"rolex/submariner"}, q.calls, "no fallback query when the primary window is rich enough")
}

func TestEstimate_FallsBackToBrandOnly(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{byModel: map[string][]float64{
		"submariner": {9000, 8800}, // below the sample floor
		"":           {9000, 8800, 9200, 9100},
	}}
	e := NewEstimator(q)

	m := e.Estimate(context.Background(), "watch", "rolex", "submariner")
	require.NotNil(t, m)
	assert.Equal(t, 4, m.Samples)
	assert.False(t, m.FullWindow)
	assert.Equal(t, []string{"rolex/submariner", "rolex/"}, q.calls)
}

func TestEstimate_NoUsableData(t *testing.T) {
	t.Parallel()

	e := NewEstimator(&fakeQuerier{byModel: map[string][]float64{}})
	assert.Nil(t, e.Estimate(context.Background(), "watch", "rolex", "submariner"))
}

func TestEstimate_EmptyBrand(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	e := NewEstimator(q)
	assert.Nil(t, e.Estimate(context.Background(), "watch", "", ""))
	assert.Empty(t, q.calls)
}

func TestEstimate_QueryErrorDegradesToNil(t *testing.T) {
	t.Parallel()

	e := NewEstimator(&fakeQuerier{err: errors.New("connection refused")})
	assert.Nil(t, e.Estimate(context.Background(), "watch", "rolex", "submariner"))
}
