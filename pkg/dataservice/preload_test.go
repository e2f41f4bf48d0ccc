package dataservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
)

func TestPreloadReportsFailuresWithoutFailing(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(map[string]string{
		"viz_index.csv":             "VitalParam,CompFactor\nHR,DonorSex\n",
		"observed_data_summary.csv": "Abbreviation,Pre_Mean\nHR,80\n",
	}, WithPublisher(pub))

	report := svc.Preload(context.Background())

	assert.ElementsMatch(t, []string{"viz_index", "observed_summary", "loess"}, report.Loaded)
	assert.Contains(t, report.Failed, "model_summary")
	assert.Contains(t, report.Failed, "factor_observed_summary")
	assert.Contains(t, report.Failed, "factor_model_summary")
	assert.True(t, svc.Cache().Has(cache.KeyVizIndex()))
	assert.Equal(t, []string{EventPreloadCompleted}, pub.Events())
}

func TestPreloadRunsTargetsConcurrently(t *testing.T) {
	svc := New(cache.New(cache.DefaultTTL), nil)
	gate := newGatedFetcher(newFakeFetcher(map[string]string{
		"viz_index.csv":             "VitalParam,CompFactor\nHR,DonorSex\n",
		"observed_data_summary.csv": "Abbreviation,Pre_Mean\nHR,80\n",
	}), len(svc.preloadTargets()))
	svc.fetcher = gate

	report := svc.Preload(context.Background())

	assert.Zero(t, gate.missed.Load())
	assert.ElementsMatch(t, []string{"viz_index", "observed_summary", "loess"}, report.Loaded)
	assert.Len(t, report.Failed, 3)
}

func TestHandleRefreshEvent(t *testing.T) {
	pub := &recordingPublisher{}
	purger := &countingPurger{}
	svc, f := newTestService(map[string]string{
		"viz_index.csv": "VitalParam,CompFactor\nHR,DonorSex\n",
	}, WithPublisher(pub), WithPurger(purger))
	ctx := context.Background()

	_, err := svc.VizIndex(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.HandleRefreshEvent(ctx, models.Event{Type: "preload.completed"}))
	assert.Zero(t, purger.calls)
	assert.Equal(t, 1, f.Calls("viz_index.csv"))

	require.NoError(t, svc.HandleRefreshEvent(ctx, models.Event{Type: EventDataRefreshed}))
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 2, f.Calls("viz_index.csv"))
	assert.Equal(t, []string{EventCacheCleared, EventPreloadCompleted}, pub.Events())
}

func TestHandleRefreshEventReloadsWhenPurgeFails(t *testing.T) {
	purger := &countingPurger{err: errors.New("redis down")}
	svc, f := newTestService(map[string]string{
		"viz_index.csv": "VitalParam,CompFactor\nHR,DonorSex\n",
	}, WithPurger(purger))
	ctx := context.Background()

	_, err := svc.VizIndex(ctx)
	require.NoError(t, err)

	err = svc.HandleRefreshEvent(ctx, models.Event{Type: EventDataRefreshed})
	require.Error(t, err)
	assert.ErrorIs(t, err, purger.err)
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 2, f.Calls("viz_index.csv"), "cache must be cleared and reloaded despite the purge failure")
	assert.True(t, svc.Cache().Has(cache.KeyVizIndex()))
}

func TestClearCache(t *testing.T) {
	svc, f := newTestService(map[string]string{"viz_index.csv": "VitalParam,CompFactor\nHR,DonorSex\n"})
	ctx := context.Background()

	_, err := svc.VizIndex(ctx)
	require.NoError(t, err)
	svc.ClearCache(ctx)
	assert.Empty(t, svc.Cache().Stats().Keys)

	_, err = svc.VizIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Calls("viz_index.csv"))
}
