package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type VitalParam struct {
	Code            string     `yaml:"code" json:"code"`
	Name            string     `yaml:"name" json:"name"`
	ShortName       string     `yaml:"short_name" json:"shortName"`
	Unit            string     `yaml:"unit" json:"unit"`
	YAxisLabel      string     `yaml:"y_axis_label" json:"yAxisLabel"`
	DeltaYAxisLabel string     `yaml:"delta_y_axis_label" json:"deltaYAxisLabel"`
	NormalRange     [2]float64 `yaml:"normal_range" json:"normalRange"`
	Color           string     `yaml:"color" json:"color"`
}

type CompFactor struct {
	Code        string   `yaml:"code" json:"code"`
	Name        string   `yaml:"name" json:"name"`
	ShortName   string   `yaml:"short_name" json:"shortName"`
	Description string   `yaml:"description" json:"description"`
	Categories  []string `yaml:"categories" json:"categories"`
}

// Catalog lists vital parameters and comparison factors in canonical display order.
type Catalog struct {
	Vitals  []VitalParam `yaml:"vitals" json:"vitals"`
	Factors []CompFactor `yaml:"factors" json:"factors"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Vitals) == 0 || len(cat.Factors) == 0 {
		return Catalog{}, fmt.Errorf("catalog %s: vitals and factors are required", path)
	}
	return cat, nil
}

func (c Catalog) Vital(code string) (VitalParam, bool) {
	for _, v := range c.Vitals {
		if v.Code == code {
			return v, true
		}
	}
	return VitalParam{}, false
}

func (c Catalog) Factor(code string) (CompFactor, bool) {
	for _, f := range c.Factors {
		if f.Code == code {
			return f, true
		}
	}
	return CompFactor{}, false
}

func (c Catalog) IsVitalParam(code string) bool {
	_, ok := c.Vital(code)
	return ok
}

func (c Catalog) IsCompFactor(code string) bool {
	_, ok := c.Factor(code)
	return ok
}

func (c Catalog) VitalCodes() []string {
	codes := make([]string, len(c.Vitals))
	for i, v := range c.Vitals {
		codes[i] = v.Code
	}
	return codes
}

func (c Catalog) FactorCodes() []string {
	codes := make([]string, len(c.Factors))
	for i, f := range c.Factors {
		codes[i] = f.Code
	}
	return codes
}

func DefaultCatalog() Catalog {
	return Catalog{
		Vitals: []VitalParam{
			{Code: "ARTm", Name: "Mean Arterial Pressure", ShortName: "MAP", Unit: "mmHg", YAxisLabel: "Mean Arterial Pressure (mmHg)", DeltaYAxisLabel: "Change in MAP (mmHg)", NormalRange: [2]float64{70, 100}, Color: "#6366f1"},
			{Code: "ARTs", Name: "Systolic Arterial Pressure", ShortName: "SBP", Unit: "mmHg", YAxisLabel: "Systolic Pressure (mmHg)", DeltaYAxisLabel: "Change in SBP (mmHg)", NormalRange: [2]float64{90, 140}, Color: "#8b5cf6"},
			{Code: "ARTd", Name: "Diastolic Arterial Pressure", ShortName: "DBP", Unit: "mmHg", YAxisLabel: "Diastolic Pressure (mmHg)", DeltaYAxisLabel: "Change in DBP (mmHg)", NormalRange: [2]float64{60, 90}, Color: "#a78bfa"},
			{Code: "HR", Name: "Heart Rate", ShortName: "HR", Unit: "bpm", YAxisLabel: "Heart Rate (bpm)", DeltaYAxisLabel: "Change in HR (bpm)", NormalRange: [2]float64{60, 100}, Color: "#ef4444"},
			{Code: "FIO2", Name: "Fraction of Inspired Oxygen", ShortName: "FiO2", Unit: "%", YAxisLabel: "FiO2 (%)", DeltaYAxisLabel: "Change in FiO2 (%)", NormalRange: [2]float64{21, 100}, Color: "#06b6d4"},
			{Code: "SPO2", Name: "Oxygen Saturation", ShortName: "SpO2", Unit: "%", YAxisLabel: "Oxygen Saturation (%)", DeltaYAxisLabel: "Change in SpO2 (%)", NormalRange: [2]float64{95, 100}, Color: "#10b981"},
			{Code: "VE", Name: "Minute Ventilation", ShortName: "VE", Unit: "L/min", YAxisLabel: "Minute Ventilation (L/min)", DeltaYAxisLabel: "Change in VE (L/min)", NormalRange: [2]float64{5, 8}, Color: "#f59e0b"},
		},
		Factors: []CompFactor{
			{Code: "DonorHb_Cat", Name: "Donor Hemoglobin", ShortName: "Donor Hemoglobin", Description: "Donor hemoglobin level category at time of donation", Categories: []string{"Low", "Medium", "High"}},
			{Code: "Storage_Cat", Name: "Storage Time", ShortName: "Storage Time", Description: "Duration of RBC storage before transfusion", Categories: []string{"Fresh (0-7d)", "Medium (8-21d)", "Old (22-42d)"}},
			{Code: "wdy_donation", Name: "Donation Weekday", ShortName: "Donation Weekday", Description: "Day of the week when blood was donated", Categories: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}},
			{Code: "DonorSex", Name: "Donor Sex", ShortName: "Donor Sex", Description: "Biological sex of the blood donor", Categories: []string{"Female", "Male"}},
			{Code: "DonorParity", Name: "Donor Parity", ShortName: "Donor Parity", Description: "Parity status of female donors", Categories: []string{"Nulliparous", "Parous"}},
		},
	}
}
