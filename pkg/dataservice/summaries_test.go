package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVitalAbbreviation(t *testing.T) {
	cases := map[string]string{
		"FIO2(u)":    "FIO2",
		"VE(U)":      "VE",
		"SpO2":       "SPO2",
		"fio2":       "FIO2",
		"Hjärtfrekv": "HR",
		"HJÄRTFREKV": "HR",
		"ARTm":       "ARTm",
		"HR":         "HR",
		"Temp":       "Temp",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeVitalAbbreviation(in), in)
	}
}

func TestVitalSummariesJoinNormalizedAbbreviations(t *testing.T) {
	svc, _ := newTestService(map[string]string{
		"observed_data_summary.csv": "Abbreviation,Pre_Mean,Pre_SD,Post_Mean,Post_SD,Diff_Mean,Diff_LCL,Diff_UCL\n" +
			"FIO2(u),40,5,42,5,2,1,3\n" +
			"Hjärtfrekv,80,10,78,10,-2,-3,-1\n",
		"model_based_summary.csv": "Abbreviation,Base_Pre,Base_Post,Base_Diff,Full_Pre,Full_Post,Full_Diff\n" +
			"FIO2,40,41,1,40,42,2\n" +
			"VE(u),7,7.2,0.2,7,7.3,0.3\n",
	})

	pairs, err := svc.VitalSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, "FIO2", pairs[0].Abbreviation)
	require.NotNil(t, pairs[0].Observed)
	require.NotNil(t, pairs[0].Model)
	assert.Equal(t, 2.0, *pairs[0].Model.FullDiff)

	assert.Equal(t, "HR", pairs[1].Abbreviation)
	assert.Nil(t, pairs[1].Model)

	assert.Equal(t, "VE", pairs[2].Abbreviation)
	assert.Nil(t, pairs[2].Observed)
}

func TestFactorSummariesNormalizeAbbreviation(t *testing.T) {
	svc, f := newTestService(map[string]string{
		"factor_observed_data_summary.csv": "Abbreviation,FactorName,FactorCategory,Diff_Mean,p_value\n" +
			"SpO2,DonorSex,Female,0.5,0.04\n",
		"factor_model_based_summary.csv": "Abbreviation,FactorName,FactorCategory,Full_Diff\n" +
			"Hjärtfrekv,Storage_Cat,Old (22-42d),-1.5\n",
	})
	ctx := context.Background()

	observed, err := svc.FactorObservedSummary(ctx)
	require.NoError(t, err)
	require.Len(t, observed, 1)
	assert.Equal(t, "SPO2", observed[0].Abbreviation)
	assert.Equal(t, 0.04, *observed[0].PValue)
	assert.Nil(t, observed[0].DiffT)

	model, err := svc.FactorModelSummary(ctx)
	require.NoError(t, err)
	require.Len(t, model, 1)
	assert.Equal(t, "HR", model[0].Abbreviation)
	assert.Equal(t, "Old (22-42d)", model[0].FactorCategory)

	_, err = svc.FactorModelSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Calls("factor_model_based_summary.csv"))
}
