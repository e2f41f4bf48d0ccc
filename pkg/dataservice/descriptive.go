package dataservice

import (
	"context"
	"sort"

	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
	"golang.org/x/sync/errgroup"
)

const unknownLabel = "Unknown"

// shareRules describes how one distribution file becomes a list of shares.
type shareRules struct {
	labelKeys []string
	countKeys []string
	relabel   map[string]string

	// order sorts by relabelled label; labels not listed go last in file order.
	order []string
}

var (
	patientSexRules = shareRules{
		labelKeys: []string{"Patient_Sex", "sex"},
		countKeys: []string{"No_of_Patients", "count"},
		relabel:   map[string]string{"U": unknownLabel},
	}
	ageGroupRules = shareRules{
		labelKeys: []string{"Age_Group", "ageGroup"},
		countKeys: []string{"COUNT", "count"},
		relabel: map[string]string{
			"20-": "20-29",
			"30-": "30-39",
			"40-": "40-49",
			"50-": "50-59",
			"60-": "60-69",
			"70-": "70-79",
			"80+": "≥80",
		},
		order: []string{"<20", "20-29", "30-39", "40-49", "50-59", "60-69", "70-79", "≥80"},
	}
	rbcUnitsRules = shareRules{
		labelKeys: []string{"Unit_Category", "unitsReceived"},
		countKeys: []string{"COUNT", "count"},
	}
	donorHbRules = shareRules{
		labelKeys: []string{"donorhb_category", "category"},
		countKeys: []string{"No_of_Transfused_Units", "count"},
		relabel:   map[string]string{">=170": "≥170"},
		order:     []string{"<125", "125-139", "140-154", "155-169", "≥170"},
	}
	donorSexRules = shareRules{
		labelKeys: []string{"donor_sex_label", "sex"},
		countKeys: []string{"No_of_Transfused_Units", "count"},
		relabel:   map[string]string{"U": unknownLabel},
	}
	donorParityRules = shareRules{
		labelKeys: []string{"donor_parity_label", "parity"},
		countKeys: []string{"No_of_Transfused_Units", "count"},
		relabel:   map[string]string{"0": "Nulliparous", "1": "Parous"},
	}
	weekdayRules = shareRules{
		labelKeys: []string{"wdy_donation", "dayNumber"},
		countKeys: []string{"No_of_Transfused_Units", "count"},
		relabel: map[string]string{
			"1": "Sunday",
			"2": "Monday",
			"3": "Tuesday",
			"4": "Wednesday",
			"5": "Thursday",
			"6": "Friday",
			"7": "Saturday",
		},
		order: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	}
	storageRules = shareRules{
		labelKeys: []string{"storagecat", "Storage_Category"},
		countKeys: []string{"No_of_Transfused_Units", "count"},
		relabel:   map[string]string{">=40": "≥40"},
		order:     []string{"<10", "10-19", "20-29", "30-39", "≥40"},
	}
)

// buildShares relabels each row, computes its percentage of the file total and
// applies the category order. A zero total gives zero percentages.
func buildShares(rows []csvsource.Row, rules shareRules) []models.Share {
	shares := make([]models.Share, 0, len(rows))
	var total float64
	for _, row := range rows {
		code, ok := row.FirstString(rules.labelKeys...)
		if !ok || code == "" {
			code = unknownLabel
		}
		count, _ := row.FirstFloat(rules.countKeys...)
		total += count

		share := models.Share{Label: code, Count: count}
		if label, ok := rules.relabel[code]; ok {
			share.Label = label
			share.Code = code
		}
		shares = append(shares, share)
	}

	for i := range shares {
		if total > 0 {
			shares[i].Percentage = shares[i].Count / total * 100
		}
	}

	if len(rules.order) > 0 {
		rank := make(map[string]int, len(rules.order))
		for i, label := range rules.order {
			rank[label] = i
		}
		pos := func(label string) int {
			if r, ok := rank[label]; ok {
				return r
			}
			return len(rules.order)
		}
		sort.SliceStable(shares, func(i, j int) bool {
			return pos(shares[i].Label) < pos(shares[j].Label)
		})
	}
	return shares
}

func firstInt(rows []csvsource.Row, key string) int {
	if len(rows) == 0 {
		return 0
	}
	v, _ := rows[0].Int(key)
	return v
}

func decodeAgeStats(rows []csvsource.Row) models.PatientAgeStats {
	if len(rows) == 0 {
		return models.PatientAgeStats{}
	}
	row := rows[0]
	get := func(keys ...string) float64 {
		v, _ := row.FirstFloat(keys...)
		return v
	}
	return models.PatientAgeStats{
		Mean:   get("Mean_Age"),
		SD:     get("SD_Age", "Sd_Age"),
		Median: get("Median_Age"),
		Q1:     get("Q1_Age"),
		Q3:     get("Q3_Age"),
		Min:    get("Min_Age"),
		Max:    get("Max_Age"),
	}
}

var descriptiveFiles = []string{
	"unique_patients_count.csv",
	"total_transfused_units.csv",
	"patient_sex_distribution.csv",
	"patient_age_stats.csv",
	"patient_age_groups.csv",
	"rbc_units_per_patient.csv",
	"donorhb_distribution.csv",
	"donor_sex_distribution.csv",
	"donor_parity_distribution.csv",
	"donation_weekday_distribution.csv",
	"storage_distribution.csv",
}

// DescriptiveStatistics loads the eleven cohort description files concurrently
// and assembles them. Any missing file fails the whole load.
func (s *Service) DescriptiveStatistics(ctx context.Context) (models.DescriptiveStatistics, error) {
	return cached(s, cache.KeyDescriptiveStats(), s.indexTTL, func() (models.DescriptiveStatistics, error) {
		results := make([][]csvsource.Row, len(descriptiveFiles))
		g, gctx := errgroup.WithContext(ctx)
		for i, name := range descriptiveFiles {
			i, name := i, name
			g.Go(func() error {
				rows, err := s.fetchRows(gctx, "descriptive statistics", name)
				if err != nil {
					return err
				}
				results[i] = rows
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return models.DescriptiveStatistics{}, err
		}

		return models.DescriptiveStatistics{
			UniquePatients:     firstInt(results[0], "No_of_Unique_Patients"),
			TotalUnits:         firstInt(results[1], "No_of_Transfused_Units"),
			PatientSex:         buildShares(results[2], patientSexRules),
			PatientAge:         decodeAgeStats(results[3]),
			AgeGroups:          buildShares(results[4], ageGroupRules),
			RbcUnitsPerPatient: buildShares(results[5], rbcUnitsRules),
			DonorHb:            buildShares(results[6], donorHbRules),
			DonorSex:           buildShares(results[7], donorSexRules),
			DonorParity:        buildShares(results[8], donorParityRules),
			DonationWeekday:    buildShares(results[9], weekdayRules),
			Storage:            buildShares(results[10], storageRules),
		}, nil
	})
}
