package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(cfg.Catalog()); got != 2 {
		t.Fatalf("expected default catalog of 2 facilities, got %d", got)
	}
	if got := len(cfg.SignalModel().Categories()); got != 10 {
		t.Fatalf("expected 10 default categories, got %d", got)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.yaml")
	data := []byte(`
profiles:
  Mixer:
    - name: rpm
      unit: RPM
      baseline: 120
      noise: 5
  Pump:
    - name: pressure
      unit: psi
      baseline: 650
      noise: 40
facilities:
  - name: Bakery
    location: Lyon
    facility_type: Food
    assets:
      - name: Mixer 1
        asset_type: Mixer
        status: warning
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	catalog := cfg.Catalog()
	if len(catalog) != 1 || catalog[0].Name != "Bakery" || catalog[0].Assets[0].Status != "warning" {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
	model := cfg.SignalModel()
	if defs := model.MetricsFor("Mixer"); len(defs) != 1 || defs[0].Baseline != 120 {
		t.Fatalf("unexpected Mixer profile: %+v", defs)
	}
	if defs := model.MetricsFor("Pump"); len(defs) != 1 || defs[0].Unit != "psi" {
		t.Fatalf("expected Pump override, got %+v", defs)
	}
	if defs := model.MetricsFor("Turbine"); len(defs) != 5 {
		t.Fatalf("expected default Turbine profile kept, got %+v", defs)
	}
}

func TestLoadConfigRejectsInvalidProfiles(t *testing.T) {
	cases := map[string]string{
		"missing name": "profiles:\n  Pump:\n    - unit: bar\n",
		"duplicate":    "profiles:\n  Pump:\n    - name: a\n    - name: a\n",
		"negative":     "profiles:\n  Pump:\n    - name: a\n      noise: -1\n",
		"bad yaml":     "profiles: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plant.yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
