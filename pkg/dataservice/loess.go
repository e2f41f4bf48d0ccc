package dataservice

import (
	"context"
	"fmt"

	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
)

const (
	MinLoessSpan = 10
	MaxLoessSpan = 90
)

// LoessSpans lists the smoothing spans stored in the wide file; span n is a
// smoothing parameter of n/100.
func LoessSpans() []int {
	spans := make([]int, 0, MaxLoessSpan-MinLoessSpan+1)
	for n := MinLoessSpan; n <= MaxLoessSpan; n++ {
		spans = append(spans, n)
	}
	return spans
}

func decodeLoessRow(row csvsource.Row) (models.LoessDataRow, bool) {
	t, ok := row.Float("TimeFromTransfusion")
	if !ok {
		return models.LoessDataRow{}, false
	}
	return models.LoessDataRow{
		TimeFromTransfusion: t,
		VitalParam:          row.String("VitalParam"),
		Abbreviation:        row.String("Abbreviation"),
		Pred:                row.FloatPtr("Pred"),
		LCL:                 row.FloatPtr("LCL"),
		UCL:                 row.FloatPtr("UCL"),
	}, true
}

// LoessData loads the smoothed observed curves. LOESS overlays are optional, so
// any failure is logged and reported as an empty result.
func (s *Service) LoessData(ctx context.Context) []models.LoessDataRow {
	rows, err := cached(s, cache.KeyLoessAll(), s.indexTTL, func() ([]models.LoessDataRow, error) {
		raw, err := s.fetchRows(ctx, "loess", "VIZ_LOESS.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.LoessDataRow, 0, len(raw))
		dropped := 0
		for _, row := range raw {
			decoded, ok := decodeLoessRow(row)
			if !ok {
				dropped++
				continue
			}
			out = append(out, decoded)
		}
		warnDropped("loess", dropped)
		return out, nil
	})
	if err != nil {
		metrics.LoessDegraded()
		logger.Log.WithError(err).Warn("Failed to load LOESS data")
		return []models.LoessDataRow{}
	}
	return rows
}

// LoessDataForVital filters the LOESS curves to one vital, matching either the
// VitalParam or the Abbreviation column.
func (s *Service) LoessDataForVital(ctx context.Context, vital string) []models.LoessDataRow {
	key := cache.KeyLoessVital(vital)
	if rows, ok := cache.GetAs[[]models.LoessDataRow](s.cache, key); ok {
		return rows
	}

	all := s.LoessData(ctx)
	filtered := make([]models.LoessDataRow, 0)
	for _, row := range all {
		if row.VitalParam == vital || row.Abbreviation == vital {
			filtered = append(filtered, row)
		}
	}
	// An empty source usually means the load degraded; don't pin that.
	if len(all) > 0 {
		s.cache.Set(key, filtered, s.indexTTL)
	}
	return filtered
}

// LoessMultiSpanData loads the wide LOESS file with one curve per span. Like
// LoessData it degrades to an empty result.
func (s *Service) LoessMultiSpanData(ctx context.Context) []models.LoessMultiSpanRow {
	rows, err := cached(s, cache.KeyLoessMultiSpan(), s.indexTTL, func() ([]models.LoessMultiSpanRow, error) {
		raw, err := s.fetchRows(ctx, "loess multi-span", "VIZ_LOESS_final_with_range.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.LoessMultiSpanRow, 0, len(raw))
		dropped := 0
		for _, row := range raw {
			base, ok := decodeLoessRow(row)
			if !ok {
				dropped++
				continue
			}
			out = append(out, models.LoessMultiSpanRow{LoessDataRow: base, Spans: decodeSpans(row)})
		}
		warnDropped("loess multi-span", dropped)
		return out, nil
	})
	if err != nil {
		metrics.LoessDegraded()
		logger.Log.WithError(err).Warn("Failed to load multi-span LOESS data")
		return []models.LoessMultiSpanRow{}
	}
	return rows
}

func decodeSpans(row csvsource.Row) map[int]models.LoessSpanPrediction {
	spans := make(map[int]models.LoessSpanPrediction)
	for _, n := range LoessSpans() {
		p := models.LoessSpanPrediction{
			Pred: row.FloatPtr(fmt.Sprintf("Pred_%d", n)),
			LCL:  row.FloatPtr(fmt.Sprintf("LCL_%d", n)),
			UCL:  row.FloatPtr(fmt.Sprintf("UCL_%d", n)),
		}
		if p.Pred != nil || p.LCL != nil || p.UCL != nil {
			spans[n] = p
		}
	}
	return spans
}

// ExtractLoessForSpan projects one span out of the wide rows. Each column falls
// back to the un-suffixed Pred/LCL/UCL when the span-specific one is missing.
func ExtractLoessForSpan(rows []models.LoessMultiSpanRow, span int) ([]models.LoessDataRow, error) {
	if span < MinLoessSpan || span > MaxLoessSpan {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSpan, span)
	}
	out := make([]models.LoessDataRow, 0, len(rows))
	for _, row := range rows {
		narrow := row.LoessDataRow
		if p, ok := row.Spans[span]; ok {
			narrow.Pred = firstPresent(p.Pred, narrow.Pred)
			narrow.LCL = firstPresent(p.LCL, narrow.LCL)
			narrow.UCL = firstPresent(p.UCL, narrow.UCL)
		}
		out = append(out, narrow)
	}
	return out, nil
}

func firstPresent(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
