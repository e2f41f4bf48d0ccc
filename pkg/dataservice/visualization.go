package dataservice

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
)

// decodePrediction reads the shared trajectory columns. Rows without a numeric
// TimeFromTransfusion cannot be placed on the time axis and are rejected.
func decodePrediction(row csvsource.Row) (models.Prediction, bool) {
	t, ok := row.Float("TimeFromTransfusion")
	if !ok {
		return models.Prediction{}, false
	}
	return models.Prediction{
		TimeFromTransfusion: t,
		PredValFull:         row.FloatPtr("PredVal_Full"),
		LowerFull:           row.FloatPtr("Lower_Full"),
		UpperFull:           row.FloatPtr("Upper_Full"),
		PredValBase:         row.FloatPtr("PredVal_Base"),
		DeltaFull:           row.FloatPtr("Delta_Full"),
		DeltaLower:          row.FloatPtr("Delta_Lower"),
		DeltaUpper:          row.FloatPtr("Delta_Upper"),
		DeltaBase:           row.FloatPtr("Delta_Base"),
	}, true
}

func warnDropped(dataset string, dropped int) {
	if dropped == 0 {
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"dataset": dataset,
		"dropped": dropped,
	}).Warn("rows without TimeFromTransfusion dropped")
}

// DecodeVisualizationRows copies the factor-named column into CompValue so chart
// preparation never needs to know the factor. A file without that column may
// carry CompValue directly.
func DecodeVisualizationRows(rows []csvsource.Row, factor string) ([]models.VisualizationDataRow, int) {
	out := make([]models.VisualizationDataRow, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		pred, ok := decodePrediction(row)
		if !ok {
			dropped++
			continue
		}
		compValue, _ := row.FirstString(factor, "CompValue")
		out = append(out, models.VisualizationDataRow{
			Prediction: pred,
			VitalParam: row.String("VitalParam"),
			CompFactor: row.String("CompFactor"),
			CompValue:  compValue,
			LowerBase:  row.FloatPtr("Lower_Base"),
			UpperBase:  row.FloatPtr("Upper_Base"),
		})
	}
	return out, dropped
}

// ComparisonValues returns the distinct non-empty categories in order of first
// appearance.
func ComparisonValues(rows []models.VisualizationDataRow) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, row := range rows {
		if row.CompValue == "" || seen[row.CompValue] {
			continue
		}
		seen[row.CompValue] = true
		values = append(values, row.CompValue)
	}
	return values
}

// VisualizationData loads the time series of one vital stratified by one
// comparison factor. Metadata.TimeRange is [+Inf, -Inf] when the file has no rows.
func (s *Service) VisualizationData(ctx context.Context, vital, factor string) (models.VisualizationData, error) {
	if err := s.checkVital(vital); err != nil {
		return models.VisualizationData{}, err
	}
	if err := s.checkFactor(factor); err != nil {
		return models.VisualizationData{}, err
	}

	return cached(s, cache.KeyVisualization(vital, factor), s.seriesTTL, func() (models.VisualizationData, error) {
		raw, err := s.fetchRows(ctx, "visualization", fmt.Sprintf("VIZ_%s_%s.csv", vital, factor))
		if err != nil {
			return models.VisualizationData{}, err
		}
		rows, dropped := DecodeVisualizationRows(raw, factor)
		warnDropped("visualization", dropped)

		timeRange := models.EmptyTimeRange()
		for _, row := range rows {
			timeRange = timeRange.Extend(row.TimeFromTransfusion)
		}

		vitalInfo, _ := s.catalog.Vital(vital)
		factorInfo, _ := s.catalog.Factor(factor)
		return models.VisualizationData{
			Rows: rows,
			Metadata: models.VisualizationMetadata{
				VitalParam:  vital,
				VitalName:   vitalInfo.Name,
				CompFactor:  factor,
				CompName:    factorInfo.Name,
				YLabel:      vitalInfo.YAxisLabel,
				DeltaYLabel: vitalInfo.DeltaYAxisLabel,
				TimeRange:   timeRange,
				DataPoints:  len(rows),
			},
			ComparisonColumn: factor,
			ComparisonValues: ComparisonValues(rows),
		}, nil
	})
}

// TransfusionData loads the whole-cohort transfusion effect for one vital.
func (s *Service) TransfusionData(ctx context.Context, vital string) ([]models.TransfusionDataRow, error) {
	if err := s.checkVital(vital); err != nil {
		return nil, err
	}

	return cached(s, cache.KeyTransfusion(vital), s.seriesTTL, func() ([]models.TransfusionDataRow, error) {
		raw, err := s.fetchRows(ctx, "transfusion", fmt.Sprintf("VIZ_%s_TRANSFUSION.csv", vital))
		if err != nil {
			return nil, err
		}
		rows := make([]models.TransfusionDataRow, 0, len(raw))
		dropped := 0
		for _, row := range raw {
			pred, ok := decodePrediction(row)
			if !ok {
				dropped++
				continue
			}
			rows = append(rows, models.TransfusionDataRow{Prediction: pred, VitalParam: row.String("VitalParam")})
		}
		warnDropped("transfusion", dropped)
		return rows, nil
	})
}
