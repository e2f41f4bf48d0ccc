package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogOrder(t *testing.T) {
	cat := DefaultCatalog()
	codes := cat.VitalCodes()
	want := []string{"ARTm", "ARTs", "ARTd", "HR", "FIO2", "SPO2", "VE"}
	if len(codes) != len(want) {
		t.Fatalf("expected %d vitals, got %d", len(want), len(codes))
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("vital %d: expected %s, got %s", i, want[i], codes[i])
		}
	}
	if !cat.IsCompFactor("wdy_donation") {
		t.Fatal("expected wdy_donation to be a known factor")
	}
	if cat.IsVitalParam("hr") {
		t.Fatal("vital codes are case-sensitive")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
vitals:
  - code: HR
    name: Heart Rate
    unit: bpm
    y_axis_label: Heart Rate (bpm)
    delta_y_axis_label: Change in HR (bpm)
    normal_range: [60, 100]
factors:
  - code: DonorSex
    name: Donor Sex
    categories: [Female, Male]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hr, ok := cat.Vital("HR")
	if !ok {
		t.Fatal("expected HR")
	}
	if hr.NormalRange[1] != 100 {
		t.Fatalf("unexpected normal range %v", hr.NormalRange)
	}
	if f, _ := cat.Factor("DonorSex"); len(f.Categories) != 2 {
		t.Fatalf("unexpected categories %v", f.Categories)
	}
}

func TestLoadRejectsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("vitals: []\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Factors) != 5 {
		t.Fatalf("expected 5 factors, got %d", len(cat.Factors))
	}
}
