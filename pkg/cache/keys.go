package cache

import "fmt"

// Every cache key is built here so two datasets can never share a key by
// accident. The prefixes are distinct per dataset.

func KeyVizIndex() string { return "viz_index" }

func KeyVisualization(vital, factor string) string {
	return fmt.Sprintf("viz_%s_%s", vital, factor)
}

func KeyTransfusion(vital string) string {
	return fmt.Sprintf("transfusion_%s", vital)
}

func KeyLoessAll() string { return "loess_all" }

func KeyLoessVital(vital string) string {
	return fmt.Sprintf("loess_vital_%s", vital)
}

func KeyLoessMultiSpan() string { return "loess_multispan_all" }

func KeyObservedSummary() string { return "observed_summary" }

func KeyModelSummary() string { return "model_summary" }

func KeyFactorObservedSummary() string { return "factor_observed_summary" }

func KeyFactorModelSummary() string { return "factor_model_summary" }

func KeyDescriptiveStats() string { return "descriptive_stats" }
