package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/experiment"
	"github.com/san-kum/chromsim/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Preset is "group/name"; an
// empty preset starts from the default configuration. Params overrides
// forcefield parameters by their parameter-file names.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Config    string             `yaml:"config"`
	Seed      int64              `yaml:"seed"`
	Steps     int                `yaml:"steps"`
	AdaptWall *bool              `yaml:"adapt_wall"`
	Params    map[string]float64 `yaml:"params"`
	SaveAs    string             `yaml:"save_as"`
}

// StepResult pairs a scenario step with its run.
type StepResult struct {
	Label  string
	Seed   int64
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Resolve builds the configuration of one step.
func (s ScenarioStep) Resolve() (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	label := "default"

	if s.Preset != "" {
		group, name, _ := strings.Cut(s.Preset, "/")
		p := config.GetPreset(group, name)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s", s.Preset)
		}
		c := *p
		cfg = &c
		label = s.Preset
	}
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		label = s.Config
	}
	if s.SaveAs != "" {
		label = s.SaveAs
	}

	for name, v := range s.Params {
		p, err := config.SetParam(cfg.Params, name, v)
		if err != nil {
			return nil, "", err
		}
		cfg.Params = p
	}
	if s.Steps > 0 {
		cfg.Run.Steps = s.Steps
	}
	if s.AdaptWall != nil {
		cfg.Run.AdaptWall = *s.AdaptWall
	}
	if s.Seed != 0 {
		cfg.Run.Seed = s.Seed
	}

	return cfg, label, cfg.Validate()
}

// RunScenario executes all steps in a scenario, reporting progress to w.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, w io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, label, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "running step %d/%d: %s\n", i+1, len(scenario.Steps), label)

		exp := experiment.New(cfg)
		if err := exp.Setup(cfg.Run.Seed, registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Label: label, Seed: cfg.Run.Seed, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs one configuration across a range of values of a
// single forcefield parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Seed      int64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue    float64
	FinalReaction float64
	PeakReaction  float64
	FinalEnergy   float64
	FinalWall     float64
}

// RunSweep executes a parameter sweep. Every point uses the same seed.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, w io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one point")
	}
	if _, err := config.ParamValue(sweep.Base.Params, sweep.ParamName); err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		p, err := config.SetParam(cfg.Params, sweep.ParamName, paramVal)
		if err != nil {
			return nil, err
		}
		cfg.Params = p

		exp := experiment.New(&cfg)
		if err := exp.Setup(sweep.Seed, registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		peak := 0.0
		for _, s := range result.Samples {
			if s.PackingReaction > peak {
				peak = s.PackingReaction
			}
		}
		final := result.Final()
		results = append(results, SweepResult{
			ParamValue:    paramVal,
			FinalReaction: final.PackingReaction,
			PeakReaction:  peak,
			FinalEnergy:   final.Energy,
			FinalWall:     final.WallScale,
		})

		fmt.Fprintf(w, "sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
