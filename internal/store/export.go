package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/chromsim/internal/sim"
)

type ExportData struct {
	Preset          string             `json:"preset"`
	Dt              float64            `json:"dt"`
	Steps           int                `json:"steps"`
	Times           []float64          `json:"times"`
	Stages          []string           `json:"stages"`
	Energies        []float64          `json:"energies"`
	PackingReaction []float64          `json:"packing_reaction"`
	WallScale       []float64          `json:"wall_scale"`
	CoreScale       []float64          `json:"core_scale"`
	BondScale       []float64          `json:"bond_scale"`
	Semiaxes        [][3]float64       `json:"semiaxes"`
	Metrics         map[string]float64 `json:"metrics"`
}

func NewExportData(preset string, dt float64, result *sim.Result) ExportData {
	data := ExportData{
		Preset:          preset,
		Dt:              dt,
		Steps:           len(result.Samples),
		Times:           result.Series(func(s sim.Sample) float64 { return s.Time }),
		Stages:          make([]string, len(result.Samples)),
		Energies:        result.Series(func(s sim.Sample) float64 { return s.Energy }),
		PackingReaction: result.Series(func(s sim.Sample) float64 { return s.PackingReaction }),
		WallScale:       result.Series(func(s sim.Sample) float64 { return s.WallScale }),
		CoreScale:       result.Series(func(s sim.Sample) float64 { return s.CoreScale }),
		BondScale:       result.Series(func(s sim.Sample) float64 { return s.BondScale }),
		Semiaxes:        make([][3]float64, len(result.Samples)),
		Metrics:         result.Metrics,
	}

	for i, s := range result.Samples {
		data.Stages[i] = s.Stage
		data.Semiaxes[i] = [3]float64{s.Semiaxes.X, s.Semiaxes.Y, s.Semiaxes.Z}
	}
	return data
}

func ExportJSON(path string, preset string, dt float64, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, preset, dt, result)
}

func ExportJSONStdout(preset string, dt float64, result *sim.Result) error {
	return WriteJSON(os.Stdout, preset, dt, result)
}

func WriteJSON(w io.Writer, preset string, dt float64, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(preset, dt, result))
}
