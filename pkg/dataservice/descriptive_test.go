package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
)

func descriptiveFixture() map[string]string {
	return map[string]string{
		"unique_patients_count.csv":         "No_of_Unique_Patients\n1234\n",
		"total_transfused_units.csv":        "No_of_Transfused_Units\n3500\n",
		"patient_sex_distribution.csv":      "Patient_Sex,No_of_Patients\nM,600\nF,600\nU,34\n",
		"patient_age_stats.csv":             "Mean_Age,Median_Age,Min_Age,Max_Age,Q1_Age,Q3_Age\n65.2,67,18,99,55,77\n",
		"patient_age_groups.csv":            "Age_Group,COUNT\n80+,10\n<20,5\n20-,5\n",
		"rbc_units_per_patient.csv":         "Unit_Category,COUNT\n1,50\n2,30\n3+,20\n",
		"donorhb_distribution.csv":          "donorhb_category,No_of_Transfused_Units\n>=170,10\n<125,30\n140-154,60\n",
		"donor_sex_distribution.csv":        "donor_sex_label,No_of_Transfused_Units\nMale,2000\nFemale,1500\n",
		"donor_parity_distribution.csv":     "donor_parity_label,No_of_Transfused_Units\n0,300\n1,700\n",
		"donation_weekday_distribution.csv": "wdy_donation,No_of_Transfused_Units\n1,10\n2,20\n7,30\n",
		"storage_distribution.csv":          "storagecat,No_of_Transfused_Units\n>=40,5\n<10,15\n",
	}
}

func labels(shares []models.Share) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.Label
	}
	return out
}

func TestDescriptiveStatistics(t *testing.T) {
	svc, _ := newTestService(descriptiveFixture())

	stats, err := svc.DescriptiveStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1234, stats.UniquePatients)
	assert.Equal(t, 3500, stats.TotalUnits)
	assert.Equal(t, 65.2, stats.PatientAge.Mean)
	assert.Equal(t, 77.0, stats.PatientAge.Q3)

	assert.Equal(t, []string{"M", "F", "Unknown"}, labels(stats.PatientSex))
	assert.Equal(t, "U", stats.PatientSex[2].Code)

	assert.Equal(t, []string{"<20", "20-29", "≥80"}, labels(stats.AgeGroups))
	assert.InDelta(t, 50.0, stats.AgeGroups[2].Percentage, 1e-9)

	assert.Equal(t, []string{"1", "2", "3+"}, labels(stats.RbcUnitsPerPatient))
	assert.Equal(t, []string{"<125", "140-154", "≥170"}, labels(stats.DonorHb))

	require.Len(t, stats.DonorSex, 2)
	assert.InDelta(t, 57.14, stats.DonorSex[0].Percentage, 0.01)
	assert.InDelta(t, 42.86, stats.DonorSex[1].Percentage, 0.01)

	assert.Equal(t, []string{"Nulliparous", "Parous"}, labels(stats.DonorParity))
	assert.Equal(t, []string{"Monday", "Saturday", "Sunday"}, labels(stats.DonationWeekday))
	assert.Equal(t, "1", stats.DonationWeekday[2].Code)
	assert.Equal(t, []string{"<10", "≥40"}, labels(stats.Storage))
}

func TestDescriptiveStatisticsFetchesFilesConcurrently(t *testing.T) {
	gate := newGatedFetcher(newFakeFetcher(descriptiveFixture()), len(descriptiveFiles))
	svc := New(cache.New(cache.DefaultTTL), gate)

	stats, err := svc.DescriptiveStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, gate.missed.Load())
	assert.Equal(t, 1234, stats.UniquePatients)
}

func TestDescriptiveStatisticsFailsWhenAnyFileIsMissing(t *testing.T) {
	files := descriptiveFixture()
	delete(files, "storage_distribution.csv")
	svc, _ := newTestService(files)

	_, err := svc.DescriptiveStatistics(context.Background())
	assert.ErrorIs(t, err, csvsource.ErrResourceNotFound)
}

func TestBuildSharesZeroTotal(t *testing.T) {
	rows := []csvsource.Row{
		{"sex": csvsource.TypeCell("Female"), "count": csvsource.TypeCell("0")},
		{"count": csvsource.TypeCell("0")},
	}
	shares := buildShares(rows, donorSexRules)
	require.Len(t, shares, 2)
	assert.Equal(t, "Female", shares[0].Label)
	assert.Equal(t, "Unknown", shares[1].Label)
	assert.Zero(t, shares[0].Percentage)
	assert.Zero(t, shares[1].Percentage)
}
