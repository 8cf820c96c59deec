package automation

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/experiment"
	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/structure"
)

func smallConfig() *config.Config {
	c := *config.GetPreset("compaction", "rapid")
	c.Design.Particles = 42
	c.Design.Chains = structure.UniformChains(2, 20)
	c.Design.NucleolarBonds = []forcefield.NucleolarBond{{Organizer: 5, Nucleolus: 40}, {Organizer: 25, Nucleolus: 41}}
	c.Run.Steps = 10
	return &c
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	text := `
name: droplets
description: droplet energy on and off
steps:
  - preset: nucleolus/droplets
    seed: 7
    steps: 5
    params:
      nucleolus-droplet-energy: 2
    save_as: weak
  - preset: static/relaxed
    adapt_wall: true
`
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "droplets" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, label, err := sc.Steps[0].Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if label != "weak" || cfg.Run.Seed != 7 || cfg.Run.Steps != 5 {
		t.Errorf("unexpected step 0: label=%s seed=%d steps=%d", label, cfg.Run.Seed, cfg.Run.Steps)
	}
	if cfg.Params.NucleolusDropletEnergy != 2 {
		t.Errorf("param override not applied: %v", cfg.Params.NucleolusDropletEnergy)
	}
	if config.GetPreset("nucleolus", "droplets").Params.NucleolusDropletEnergy != 5 {
		t.Error("resolving a step must not modify the preset")
	}

	cfg, _, err = sc.Steps[1].Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.Run.AdaptWall {
		t.Error("adapt_wall override not applied")
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("name: nothing\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(empty); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		step ScenarioStep
	}{
		{"unknown preset", ScenarioStep{Preset: "static/none"}},
		{"unknown param", ScenarioStep{Params: map[string]float64{"bogus": 1}}},
		{"invalid param", ScenarioStep{Params: map[string]float64{"a-core-diameter": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.step.Resolve(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Base:      smallConfig(),
		ParamName: "wall-packing-spring",
		ParamMin:  50,
		ParamMax:  150,
		NumSteps:  3,
		Seed:      4,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), io.Discard)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []float64{50, 100, 150} {
		if results[i].ParamValue != want {
			t.Errorf("point %d: value %v, want %v", i, results[i].ParamValue, want)
		}
		if results[i].PeakReaction < results[i].FinalReaction && results[i].FinalReaction > 0 {
			t.Errorf("point %d: peak %v below final %v", i, results[i].PeakReaction, results[i].FinalReaction)
		}
	}
	if sweep.Base.Params.WallPackingSpring != forcefield.DefaultParams().WallPackingSpring {
		t.Error("sweep must not modify the base config")
	}
}

func TestRunSweepUnknownParam(t *testing.T) {
	sweep := &ParameterSweep{Base: smallConfig(), ParamName: "bogus", NumSteps: 2}
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), io.Discard); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
