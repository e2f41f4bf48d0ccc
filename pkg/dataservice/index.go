package dataservice

import (
	"context"

	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
)

// VizIndex loads the list of (vital, factor) pairs that have data files.
func (s *Service) VizIndex(ctx context.Context) ([]models.VizIndexEntry, error) {
	return cached(s, cache.KeyVizIndex(), s.indexTTL, func() ([]models.VizIndexEntry, error) {
		rows, err := s.fetchRows(ctx, "viz index", "viz_index.csv")
		if err != nil {
			return nil, err
		}
		entries := make([]models.VizIndexEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, models.VizIndexEntry{
				VitalParam:  row.String("VitalParam"),
				CompFactor:  row.String("CompFactor"),
				CompName:    row.String("CompName"),
				VitalName:   row.String("VitalName"),
				YLabel:      row.String("YLabel"),
				DeltaYLabel: row.String("DeltaYLabel"),
			})
		}
		return entries, nil
	})
}

// AvailableVitalParams returns the vitals present in the index, in catalog order.
func (s *Service) AvailableVitalParams(ctx context.Context) ([]string, error) {
	index, err := s.VizIndex(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(index))
	for _, e := range index {
		present[e.VitalParam] = true
	}
	return inOrder(s.catalog.VitalCodes(), present), nil
}

// AvailableCompFactors returns the factors indexed for vital, in catalog order.
func (s *Service) AvailableCompFactors(ctx context.Context, vital string) ([]string, error) {
	index, err := s.VizIndex(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool)
	for _, e := range index {
		if e.VitalParam == vital {
			present[e.CompFactor] = true
		}
	}
	return inOrder(s.catalog.FactorCodes(), present), nil
}

func inOrder(canonical []string, present map[string]bool) []string {
	out := make([]string, 0, len(present))
	for _, code := range canonical {
		if present[code] {
			out = append(out, code)
		}
	}
	return out
}
