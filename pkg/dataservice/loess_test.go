package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
)

func TestLoessDataDegradesToEmpty(t *testing.T) {
	svc, _ := newTestService(nil)
	before := metrics.Read().LoessDegraded

	rows := svc.LoessData(context.Background())
	require.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, before+1, metrics.Read().LoessDegraded)

	assert.Empty(t, svc.LoessDataForVital(context.Background(), "HR"))
	assert.Empty(t, svc.LoessMultiSpanData(context.Background()))
}

func TestLoessDataForVitalMatchesEitherColumn(t *testing.T) {
	svc, _ := newTestService(map[string]string{
		"VIZ_LOESS.csv": "TimeFromTransfusion,VitalParam,Abbreviation,Pred,LCL,UCL\n" +
			"0,HR,,70,68,72\n" +
			"0,,HR,71,69,73\n" +
			"0,ARTm,ARTm,80,78,82\n",
	})

	rows := svc.LoessDataForVital(context.Background(), "HR")
	require.Len(t, rows, 2)
	assert.Equal(t, 70.0, *rows[0].Pred)
	assert.Equal(t, 71.0, *rows[1].Pred)
}

func TestExtractLoessForSpanFallsBack(t *testing.T) {
	svc, _ := newTestService(map[string]string{
		"VIZ_LOESS_final_with_range.csv": "TimeFromTransfusion,VitalParam,Pred,LCL,UCL,Pred_30,LCL_30,UCL_30\n" +
			"0,HR,70,68,72,71,,73\n" +
			"10,HR,75,73,77,,,\n",
	})

	wide := svc.LoessMultiSpanData(context.Background())
	require.Len(t, wide, 2)
	assert.Contains(t, wide[0].Spans, 30)
	assert.NotContains(t, wide[1].Spans, 30)

	rows, err := ExtractLoessForSpan(wide, 30)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 71.0, *rows[0].Pred)
	assert.Equal(t, 68.0, *rows[0].LCL)
	assert.Equal(t, 73.0, *rows[0].UCL)
	assert.Equal(t, 75.0, *rows[1].Pred)
}

func TestExtractLoessForSpanValidatesSpan(t *testing.T) {
	for _, span := range []int{0, 9, 91} {
		_, err := ExtractLoessForSpan([]models.LoessMultiSpanRow{}, span)
		assert.ErrorIs(t, err, ErrInvalidSpan, "span %d", span)
	}
	rows, err := ExtractLoessForSpan(nil, MaxLoessSpan)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoessSpans(t *testing.T) {
	spans := LoessSpans()
	require.Len(t, spans, 81)
	assert.Equal(t, 10, spans[0])
	assert.Equal(t, 90, spans[len(spans)-1])
}
