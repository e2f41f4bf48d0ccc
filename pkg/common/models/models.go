package models

import (
	"encoding/json"
	"math"
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // preload.completed, cache.cleared, data.refreshed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// TimeRange is an inclusive [min, max] window in minutes relative to the
// transfusion (transfusion = 0).
type TimeRange [2]float64

func (r TimeRange) Min() float64 { return r[0] }
func (r TimeRange) Max() float64 { return r[1] }

func (r TimeRange) Contains(t float64) bool {
	return t >= r[0] && t <= r[1]
}

// Empty reports whether the range was computed over no rows, i.e. [+Inf, -Inf].
func (r TimeRange) Empty() bool {
	return r[0] > r[1]
}

// EmptyTimeRange is the identity for Extend.
func EmptyTimeRange() TimeRange {
	return TimeRange{math.Inf(1), math.Inf(-1)}
}

func (r TimeRange) Extend(t float64) TimeRange {
	if t < r[0] {
		r[0] = t
	}
	if t > r[1] {
		r[1] = t
	}
	return r
}

// MarshalJSON writes non-finite bounds as null since JSON has no Infinity.
func (r TimeRange) MarshalJSON() ([]byte, error) {
	out := [2]*float64{}
	for i, v := range r {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			v := v
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

// Prediction carries the model trajectory columns shared by the per-factor and
// whole-cohort time series files. Missing cells are nil.
type Prediction struct {
	TimeFromTransfusion float64  `json:"TimeFromTransfusion"`
	PredValFull         *float64 `json:"PredVal_Full"`
	LowerFull           *float64 `json:"Lower_Full"`
	UpperFull           *float64 `json:"Upper_Full"`
	PredValBase         *float64 `json:"PredVal_Base,omitempty"`
	DeltaFull           *float64 `json:"Delta_Full"`
	DeltaLower          *float64 `json:"Delta_Lower,omitempty"`
	DeltaUpper          *float64 `json:"Delta_Upper,omitempty"`
	DeltaBase           *float64 `json:"Delta_Base,omitempty"`
}

func (p Prediction) Time() float64 { return p.TimeFromTransfusion }

// VizIndexEntry states that a (vital, factor) pair has a data file.
type VizIndexEntry struct {
	VitalParam  string `json:"VitalParam"`
	CompFactor  string `json:"CompFactor"`
	CompName    string `json:"CompName,omitempty"`
	VitalName   string `json:"VitalName,omitempty"`
	YLabel      string `json:"YLabel,omitempty"`
	DeltaYLabel string `json:"DeltaYLabel,omitempty"`
}

type VisualizationDataRow struct {
	Prediction
	VitalParam string   `json:"VitalParam,omitempty"`
	CompFactor string   `json:"CompFactor,omitempty"`
	// CompValue is copied from the column named after the comparison factor.
	// Empty means the row carries no category.
	CompValue string   `json:"CompValue"`
	LowerBase *float64 `json:"Lower_Base,omitempty"`
	UpperBase *float64 `json:"Upper_Base,omitempty"`
}

type VisualizationMetadata struct {
	VitalParam  string    `json:"vitalParam"`
	VitalName   string    `json:"vitalName"`
	CompFactor  string    `json:"compFactor"`
	CompName    string    `json:"compName"`
	YLabel      string    `json:"yLabel"`
	DeltaYLabel string    `json:"deltaYLabel"`
	TimeRange   TimeRange `json:"timeRange"`
	DataPoints  int       `json:"dataPoints"`
}

// VisualizationData is the ready-to-chart package for one (vital, factor) selection.
type VisualizationData struct {
	Rows             []VisualizationDataRow `json:"rows"`
	Metadata         VisualizationMetadata  `json:"metadata"`
	ComparisonColumn string                 `json:"comparisonColumn"`
	ComparisonValues []string               `json:"comparisonValues"`
}

// TransfusionDataRow is the whole-cohort transfusion effect for one vital.
type TransfusionDataRow struct {
	Prediction
	VitalParam string `json:"VitalParam,omitempty"`
}

type LoessDataRow struct {
	TimeFromTransfusion float64  `json:"TimeFromTransfusion"`
	VitalParam          string   `json:"VitalParam,omitempty"`
	Abbreviation        string   `json:"Abbreviation,omitempty"`
	Pred                *float64 `json:"Pred"`
	LCL                 *float64 `json:"LCL,omitempty"`
	UCL                 *float64 `json:"UCL,omitempty"`
}

// LoessSpanPrediction is one smoothing span's curve at a time point.
type LoessSpanPrediction struct {
	Pred *float64 `json:"pred"`
	LCL  *float64 `json:"lcl,omitempty"`
	UCL  *float64 `json:"ucl,omitempty"`
}

// LoessMultiSpanRow keeps the un-suffixed curve plus one entry per span found in
// the wide file, keyed by span (10..90).
type LoessMultiSpanRow struct {
	LoessDataRow
	Spans map[int]LoessSpanPrediction `json:"spans,omitempty"`
}

// VitalSummaryRow is the observed pre/post summary of one vital parameter.
type VitalSummaryRow struct {
	Abbreviation string   `json:"Abbreviation"`
	PreMean      *float64 `json:"Pre_Mean"`
	PreSD        *float64 `json:"Pre_SD"`
	PostMean     *float64 `json:"Post_Mean"`
	PostSD       *float64 `json:"Post_SD"`
	DiffMean     *float64 `json:"Diff_Mean"`
	DiffLCL      *float64 `json:"Diff_LCL"`
	DiffUCL      *float64 `json:"Diff_UCL"`
}

// ModelVitalSummaryRow is the model-estimated pre/post summary of one vital parameter.
type ModelVitalSummaryRow struct {
	Abbreviation string   `json:"Abbreviation"`
	BasePre      *float64 `json:"Base_Pre"`
	BasePost     *float64 `json:"Base_Post"`
	BaseDiff     *float64 `json:"Base_Diff"`
	BaseDiffSE   *float64 `json:"Base_Diff_SE"`
	BaseDiffLCL  *float64 `json:"Base_Diff_LCL"`
	BaseDiffUCL  *float64 `json:"Base_Diff_UCL"`
	FullPre      *float64 `json:"Full_Pre"`
	FullPost     *float64 `json:"Full_Post"`
	FullDiff     *float64 `json:"Full_Diff"`
	FullDiffSE   *float64 `json:"Full_Diff_SE"`
	FullDiffLCL  *float64 `json:"Full_Diff_LCL"`
	FullDiffUCL  *float64 `json:"Full_Diff_UCL"`
}

// VitalSummaryPair joins observed and model summaries for one vital.
type VitalSummaryPair struct {
	Abbreviation string                `json:"abbreviation"`
	Observed     *VitalSummaryRow      `json:"observed,omitempty"`
	Model        *ModelVitalSummaryRow `json:"model,omitempty"`
}

type FactorObservedSummaryRow struct {
	Abbreviation   string   `json:"Abbreviation"`
	FactorName     string   `json:"FactorName"`
	FactorCategory string   `json:"FactorCategory"`
	PreMean        *float64 `json:"Pre_Mean"`
	PreSD          *float64 `json:"Pre_SD"`
	PostMean       *float64 `json:"Post_Mean"`
	PostSD         *float64 `json:"Post_SD"`
	DiffMean       *float64 `json:"Diff_Mean"`
	DiffSE         *float64 `json:"Diff_SE"`
	NDiff          *float64 `json:"NDiff"`
	DiffLCL        *float64 `json:"Diff_LCL"`
	DiffUCL        *float64 `json:"Diff_UCL"`
	DiffT          *float64 `json:"Diff_T,omitempty"`
	DF             *float64 `json:"df,omitempty"`
	PValue         *float64 `json:"p_value,omitempty"`
}

type FactorModelSummaryRow struct {
	Abbreviation   string   `json:"Abbreviation"`
	FactorName     string   `json:"FactorName"`
	FactorCategory string   `json:"FactorCategory"`
	BasePre        *float64 `json:"Base_Pre"`
	BasePreSE      *float64 `json:"Base_Pre_SE"`
	FullPre        *float64 `json:"Full_Pre"`
	FullPreSE      *float64 `json:"Full_Pre_SE"`
	BasePost       *float64 `json:"Base_Post"`
	BasePostSE     *float64 `json:"Base_Post_SE"`
	FullPost       *float64 `json:"Full_Post"`
	FullPostSE     *float64 `json:"Full_Post_SE"`
	BaseDiff       *float64 `json:"Base_Diff"`
	BaseDiffSE     *float64 `json:"Base_Diff_SE"`
	BaseDiffLCL    *float64 `json:"Base_Diff_LCL"`
	BaseDiffUCL    *float64 `json:"Base_Diff_UCL"`
	FullDiff       *float64 `json:"Full_Diff"`
	FullDiffSE     *float64 `json:"Full_Diff_SE"`
	FullDiffLCL    *float64 `json:"Full_Diff_LCL"`
	FullDiffUCL    *float64 `json:"Full_Diff_UCL"`
}

// Share is one category of a distribution. Code keeps the raw value from the
// source file when the label was rewritten.
type Share struct {
	Label      string  `json:"label"`
	Code       string  `json:"code,omitempty"`
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PatientAgeStats struct {
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Median float64 `json:"median"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type DescriptiveStatistics struct {
	UniquePatients     int             `json:"uniquePatients"`
	TotalUnits         int             `json:"totalUnits"`
	PatientSex         []Share         `json:"patientSex"`
	PatientAge         PatientAgeStats `json:"patientAge"`
	AgeGroups          []Share         `json:"ageGroups"`
	RbcUnitsPerPatient []Share         `json:"rbcUnitsPerPatient"`
	DonorHb            []Share         `json:"donorHb"`
	DonorSex           []Share         `json:"donorSex"`
	DonorParity        []Share         `json:"donorParity"`
	DonationWeekday    []Share         `json:"donationWeekday"`
	Storage            []Share         `json:"storage"`
}

// Float returns a pointer to v, for building optional cells.
func Float(v float64) *float64 {
	return &v
}
