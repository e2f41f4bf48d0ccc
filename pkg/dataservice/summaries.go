package dataservice

import (
	"context"
	"regexp"
	"strings"

	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
)

var unitSuffix = regexp.MustCompile(`(?i)\(u\)$`)

// NormalizeVitalAbbreviation maps the spellings used across the summary files
// to catalog codes: a trailing "(u)" is dropped, the Swedish heart rate label
// becomes HR and SpO2/FiO2/VE are upper-cased. Anything else is returned as is.
func NormalizeVitalAbbreviation(abbrev string) string {
	normalized := unitSuffix.ReplaceAllString(strings.TrimSpace(abbrev), "")

	switch strings.ToLower(normalized) {
	case "hjärtfrekv":
		return "HR"
	case "spo2":
		return "SPO2"
	case "fio2":
		return "FIO2"
	case "ve":
		return "VE"
	}
	return normalized
}

// ObservedDataSummary loads the observed pre/post summary per vital.
func (s *Service) ObservedDataSummary(ctx context.Context) ([]models.VitalSummaryRow, error) {
	return cached(s, cache.KeyObservedSummary(), s.indexTTL, func() ([]models.VitalSummaryRow, error) {
		raw, err := s.fetchRows(ctx, "observed summary", "observed_data_summary.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.VitalSummaryRow, 0, len(raw))
		for _, row := range raw {
			out = append(out, models.VitalSummaryRow{
				Abbreviation: NormalizeVitalAbbreviation(row.String("Abbreviation")),
				PreMean:      row.FloatPtr("Pre_Mean"),
				PreSD:        row.FloatPtr("Pre_SD"),
				PostMean:     row.FloatPtr("Post_Mean"),
				PostSD:       row.FloatPtr("Post_SD"),
				DiffMean:     row.FloatPtr("Diff_Mean"),
				DiffLCL:      row.FloatPtr("Diff_LCL"),
				DiffUCL:      row.FloatPtr("Diff_UCL"),
			})
		}
		return out, nil
	})
}

// ModelBasedSummary loads the model-estimated pre/post summary per vital.
func (s *Service) ModelBasedSummary(ctx context.Context) ([]models.ModelVitalSummaryRow, error) {
	return cached(s, cache.KeyModelSummary(), s.indexTTL, func() ([]models.ModelVitalSummaryRow, error) {
		raw, err := s.fetchRows(ctx, "model summary", "model_based_summary.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.ModelVitalSummaryRow, 0, len(raw))
		for _, row := range raw {
			out = append(out, models.ModelVitalSummaryRow{
				Abbreviation: NormalizeVitalAbbreviation(row.String("Abbreviation")),
				BasePre:      row.FloatPtr("Base_Pre"),
				BasePost:     row.FloatPtr("Base_Post"),
				BaseDiff:     row.FloatPtr("Base_Diff"),
				BaseDiffSE:   row.FloatPtr("Base_Diff_SE"),
				BaseDiffLCL:  row.FloatPtr("Base_Diff_LCL"),
				BaseDiffUCL:  row.FloatPtr("Base_Diff_UCL"),
				FullPre:      row.FloatPtr("Full_Pre"),
				FullPost:     row.FloatPtr("Full_Post"),
				FullDiff:     row.FloatPtr("Full_Diff"),
				FullDiffSE:   row.FloatPtr("Full_Diff_SE"),
				FullDiffLCL:  row.FloatPtr("Full_Diff_LCL"),
				FullDiffUCL:  row.FloatPtr("Full_Diff_UCL"),
			})
		}
		return out, nil
	})
}

func (s *Service) FactorObservedSummary(ctx context.Context) ([]models.FactorObservedSummaryRow, error) {
	return cached(s, cache.KeyFactorObservedSummary(), s.indexTTL, func() ([]models.FactorObservedSummaryRow, error) {
		raw, err := s.fetchRows(ctx, "factor observed summary", "factor_observed_data_summary.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.FactorObservedSummaryRow, 0, len(raw))
		for _, row := range raw {
			out = append(out, decodeFactorObserved(row))
		}
		return out, nil
	})
}

func decodeFactorObserved(row csvsource.Row) models.FactorObservedSummaryRow {
	return models.FactorObservedSummaryRow{
		Abbreviation:   NormalizeVitalAbbreviation(row.String("Abbreviation")),
		FactorName:     row.String("FactorName"),
		FactorCategory: row.String("FactorCategory"),
		PreMean:        row.FloatPtr("Pre_Mean"),
		PreSD:          row.FloatPtr("Pre_SD"),
		PostMean:       row.FloatPtr("Post_Mean"),
		PostSD:         row.FloatPtr("Post_SD"),
		DiffMean:       row.FloatPtr("Diff_Mean"),
		DiffSE:         row.FloatPtr("Diff_SE"),
		NDiff:          row.FloatPtr("NDiff"),
		DiffLCL:        row.FloatPtr("Diff_LCL"),
		DiffUCL:        row.FloatPtr("Diff_UCL"),
		DiffT:          row.FloatPtr("Diff_T"),
		DF:             row.FloatPtr("df"),
		PValue:         row.FloatPtr("p_value"),
	}
}

func (s *Service) FactorModelSummary(ctx context.Context) ([]models.FactorModelSummaryRow, error) {
	return cached(s, cache.KeyFactorModelSummary(), s.indexTTL, func() ([]models.FactorModelSummaryRow, error) {
		raw, err := s.fetchRows(ctx, "factor model summary", "factor_model_based_summary.csv")
		if err != nil {
			return nil, err
		}
		out := make([]models.FactorModelSummaryRow, 0, len(raw))
		for _, row := range raw {
			out = append(out, decodeFactorModel(row))
		}
		return out, nil
	})
}

func decodeFactorModel(row csvsource.Row) models.FactorModelSummaryRow {
	return models.FactorModelSummaryRow{
		Abbreviation:   NormalizeVitalAbbreviation(row.String("Abbreviation")),
		FactorName:     row.String("FactorName"),
		FactorCategory: row.String("FactorCategory"),
		BasePre:        row.FloatPtr("Base_Pre"),
		BasePreSE:      row.FloatPtr("Base_Pre_SE"),
		FullPre:        row.FloatPtr("Full_Pre"),
		FullPreSE:      row.FloatPtr("Full_Pre_SE"),
		BasePost:       row.FloatPtr("Base_Post"),
		BasePostSE:     row.FloatPtr("Base_Post_SE"),
		FullPost:       row.FloatPtr("Full_Post"),
		FullPostSE:     row.FloatPtr("Full_Post_SE"),
		BaseDiff:       row.FloatPtr("Base_Diff"),
		BaseDiffSE:     row.FloatPtr("Base_Diff_SE"),
		BaseDiffLCL:    row.FloatPtr("Base_Diff_LCL"),
		BaseDiffUCL:    row.FloatPtr("Base_Diff_UCL"),
		FullDiff:       row.FloatPtr("Full_Diff"),
		FullDiffSE:     row.FloatPtr("Full_Diff_SE"),
		FullDiffLCL:    row.FloatPtr("Full_Diff_LCL"),
		FullDiffUCL:    row.FloatPtr("Full_Diff_UCL"),
	}
}

// JoinVitalSummaries pairs observed and model rows by abbreviation. Pairs
// follow the order of first appearance, observed rows first.
func JoinVitalSummaries(observed []models.VitalSummaryRow, model []models.ModelVitalSummaryRow) []models.VitalSummaryPair {
	index := make(map[string]int)
	var pairs []models.VitalSummaryPair
	slot := func(abbrev string) *models.VitalSummaryPair {
		if i, ok := index[abbrev]; ok {
			return &pairs[i]
		}
		index[abbrev] = len(pairs)
		pairs = append(pairs, models.VitalSummaryPair{Abbreviation: abbrev})
		return &pairs[len(pairs)-1]
	}

	for i := range observed {
		p := slot(observed[i].Abbreviation)
		if p.Observed == nil {
			p.Observed = &observed[i]
		}
	}
	for i := range model {
		p := slot(model[i].Abbreviation)
		if p.Model == nil {
			p.Model = &model[i]
		}
	}
	return pairs
}

// VitalSummaries loads both vital-level summaries and joins them.
func (s *Service) VitalSummaries(ctx context.Context) ([]models.VitalSummaryPair, error) {
	observed, err := s.ObservedDataSummary(ctx)
	if err != nil {
		return nil, err
	}
	model, err := s.ModelBasedSummary(ctx)
	if err != nil {
		return nil, err
	}
	return JoinVitalSummaries(observed, model), nil
}
