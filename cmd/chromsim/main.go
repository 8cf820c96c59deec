package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chromsim/internal/analysis"
	"github.com/san-kum/chromsim/internal/automation"
	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/experiment"
	"github.com/san-kum/chromsim/internal/export"
	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/optim"
	"github.com/san-kum/chromsim/internal/sim"
	"github.com/san-kum/chromsim/internal/storage"
	"github.com/san-kum/chromsim/internal/store"
	"github.com/san-kum/chromsim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	steps      int
	dt         float64
	workers    int
	adaptWall  bool
	target     float64
	kp         float64
	ki         float64
	kd         float64
	ensemble   int
	exportPath string
	live       bool
	frameRate  int
	template   bool
	svgPath    string
	tolerance  float64
	kpGrid     []float64
	kiGrid     []float64
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	logger = log.New(os.Stderr, "chromsim: ", 0)
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "chromsim",
		Short:        "chromatin packing simulation under a confining nuclear membrane",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive(time.Now().UnixNano())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chromsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a compaction protocol and store the samples",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)
	runCmd.Flags().IntVar(&ensemble, "ensemble", 1, "number of seeds to run")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also export series to a json file ('-' for stdout)")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the reaction trace while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")

	assembleCmd := &cobra.Command{
		Use:   "assemble",
		Short: "build the initial structure and report every forcefield",
		Args:  cobra.NoArgs,
		RunE:  assembleOnly,
	}
	addSetupFlags(assembleCmd)
	assembleCmd.Flags().StringVar(&svgPath, "svg", "", "write an x-y cross-section to an svg file ('-' for stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a run in the terminal monitor",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSetupFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot reaction and energy of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := config.ListGroups()
			if len(args) == 1 {
				groups = []string{args[0]}
			}
			for _, g := range groups {
				names := config.ListPresets(g)
				if len(names) == 0 {
					fmt.Printf("no presets in group: %s\n", g)
					continue
				}
				fmt.Printf("%s:\n", g)
				for _, n := range names {
					fmt.Printf("  %s/%s\n", g, n)
				}
			}
			return nil
		},
	}

	paramsCmd := &cobra.Command{
		Use:   "params [file.gcfg]",
		Short: "check a forcefield parameter file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkParams,
	}
	paramsCmd.Flags().BoolVar(&template, "template", false, "print the default parameter file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation and settling analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&tolerance, "tol", 0.05, "settling band as a fraction of the final reaction")
	analyzeCmd.Flags().StringVar(&svgPath, "svg", "", "write the reaction trace to an svg file")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the wall controller gains",
		Args:  cobra.NoArgs,
		RunE:  tuneWall,
	}
	addSetupFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp-grid", []float64{0.0005, 0.001, 0.002, 0.004}, "kp values")
	tuneCmd.Flags().Float64SliceVar(&kiGrid, "ki-grid", []float64{0, 0.0001, 0.0005}, "ki values")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one forcefield parameter",
		Args:  cobra.NoArgs,
		RunE:  sweepParamCmd,
	}
	addSetupFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "nucleolus-droplet-energy", "parameter file name of the swept value")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 5, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "points", 6, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, assembleCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, paramsCmd,
		analyzeCmd, tuneCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset as group/name")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "minimum number of steps")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time per step")
	cmd.Flags().IntVar(&workers, "workers", 0, "forcefield workers (0 uses GOMAXPROCS)")
	cmd.Flags().BoolVar(&adaptWall, "adapt-wall", false, "scale the wall to hold the target reaction")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTargetReaction, "target packing reaction")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "wall controller kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "wall controller ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "wall controller kd")
}

// loadConfig resolves the run configuration: preset first, then the config
// file, then any flag given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	label := "default"

	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(group, name)
		if !ok || p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (groups: %v)", preset, config.ListGroups())
		}
		c := *p
		cfg = &c
		label = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		if preset != "" {
			logger.Printf("config file %s replaces preset %s", configFile, preset)
		}
		cfg = loaded
		label = configFile
	}

	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("steps") {
		cfg.Run.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("workers") {
		cfg.Run.Workers = workers
	}
	if cmd.Flags().Changed("adapt-wall") {
		cfg.Run.AdaptWall = adaptWall
	}
	if cmd.Flags().Changed("target") {
		cfg.Run.TargetReaction = target
	}
	if cmd.Flags().Changed("kp") {
		cfg.Run.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Run.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Run.Kd = kd
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}
	return cfg, label, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	var results []*sim.Result
	start := time.Now()

	if ensemble > 1 {
		fmt.Printf("running %s over %d seeds...\n", label, ensemble)
		ens := sim.NewEnsemble(experiment.Factory(cfg, registry), ensemble, cfg.Run.Seed)
		results, err = ens.Run(ctx, cfg.SimConfig())
		if err != nil {
			return err
		}
	} else {
		exp := experiment.New(cfg)
		if err := exp.Setup(cfg.Run.Seed, registry.DefaultMetrics()); err != nil {
			return err
		}
		if live {
			r := tui.NewLiveRenderer(label, frameRate)
			r.Start()
			defer r.Stop()
			exp.GetSimulator().AddObserver(r)
		}
		fmt.Printf("running %s (%d particles, %d steps)...\n", label, cfg.Design.Particles, cfg.TotalSteps())
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		results = []*sim.Result{result}
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for i, result := range results {
		info := storage.RunInfo{
			Preset:    label,
			Seed:      cfg.Run.Seed + int64(i),
			Dt:        cfg.Run.Dt,
			Steps:     cfg.TotalSteps(),
			Particles: cfg.Design.Particles,
			AdaptWall: cfg.Run.AdaptWall,
		}
		runID, err := st.Save(info, result)
		if err != nil {
			return err
		}
		for _, e := range result.Errors {
			logger.Printf("run %s: %v", runID, e)
		}

		final := result.Final()
		fmt.Printf("\nrun id: %s (seed %d)\n", runID, info.Seed)
		fmt.Printf("steps: %d  reaction: %.4f  energy: %.4f  wall: ×%.4f\n",
			result.StepsTaken, final.PackingReaction, final.Energy, final.WallScale)
		fmt.Println("metrics:")
		for _, name := range registry.ListMetrics() {
			if v, ok := result.Metrics[name]; ok {
				fmt.Printf("  %s: %.6f\n", name, v)
			}
		}

		if exportPath != "" && i == 0 {
			if err := exportSeries(label, cfg.Run.Dt, result); err != nil {
				return err
			}
		}
	}

	return nil
}

func exportSeries(label string, dt float64, result *sim.Result) error {
	if exportPath == "-" {
		return store.ExportJSONStdout(label, dt, result)
	}
	if err := store.ExportJSON(exportPath, label, dt, result); err != nil {
		return err
	}
	fmt.Printf("exported series to %s\n", exportPath)
	return nil
}

func assembleOnly(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(cfg.Run.Seed, nil); err != nil {
		return err
	}

	forces := make([]md.Vec, exp.System().ParticleCount())
	total, err := exp.System().Compute(forces)
	if err != nil {
		return err
	}
	energies, err := exp.System().Energies()
	if err != nil {
		return err
	}

	ffs := exp.Forcefields()
	named := []struct {
		name string
		ff   md.Forcefield
	}{
		{"repulsive", ffs.Repulsive},
		{"connectivity", ffs.Connectivity},
		{"loop", ffs.Loop},
		{"nucleolar_bonds", ffs.NucleolarBonds},
	}
	if ffs.Droplet != nil {
		named = append(named, struct {
			name string
			ff   md.Forcefield
		}{"droplet", ffs.Droplet})
	}
	named = append(named, []struct {
		name string
		ff   md.Forcefield
	}{{"membrane_inward", ffs.Inward}, {"membrane_outward", ffs.Outward}}...)

	fmt.Printf("%s: %d particles, seed %d\n\n", label, cfg.Design.Particles, cfg.Run.Seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFORCEFIELD\tKIND\tINTERACTIONS\tENERGY\tREACTION")
	for i, n := range named {
		stats := n.ff.Stats()
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4f\t%.4f\n",
			i, n.name, n.ff.Kind(), stats.Interactions, energies[i], stats.AxialReaction)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	axes := exp.Schedule().WallSemiaxes()
	fmt.Printf("\ntotal energy: %.4f\n", total)
	fmt.Printf("packing reaction: %.4f\n", ffs.PackingReaction())
	fmt.Printf("wall semiaxes: (%.3f, %.3f, %.3f)\n", axes.X, axes.Y, axes.Z)

	if svgPath != "" {
		svg := export.StructureSVG(export.Snapshot{
			Positions: exp.System().Positions(),
			View:      cfg.View(),
			Nucleolar: nucleolarParticles(cfg),
			Semiaxes:  axes,
		}, 600)
		if err := export.WriteFile(svgPath, svg, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func nucleolarParticles(cfg *config.Config) []int {
	out := make([]int, 0, len(cfg.Design.NucleolarBonds))
	for _, b := range cfg.Design.NucleolarBonds {
		out = append(out, b.Nucleolus)
	}
	return out
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return tui.RunMonitor(cfg, label, cfg.Run.Seed)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tPARTICLES\tWALL\tREACTION")

	for _, run := range runs {
		wall := "fixed"
		if run.AdaptWall {
			wall = "adaptive"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.4f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Particles,
			wall,
			run.FinalReaction,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(sim.Sample) float64
	}{
		{"packing reaction", func(s sim.Sample) float64 { return s.PackingReaction }},
		{"potential energy", func(s sim.Sample) float64 { return s.Energy }},
		{"wall scale", func(s sim.Sample) float64 { return s.WallScale }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func checkParams(cmd *cobra.Command, args []string) error {
	if template {
		fmt.Print(config.ParamsTemplate)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("params file required (or --template)")
	}

	p, err := config.LoadParams(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tVALUE")
	for _, name := range config.ParamNames() {
		v, err := config.ParamValue(p, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\n", name, v)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data")
	}

	reaction := make([]float64, len(samples))
	wall := make([]float64, len(samples))
	for i, s := range samples {
		reaction[i] = s.PackingReaction
		wall[i] = s.WallScale
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTDDEV\tMIN\tMAX\tPERIOD")
	for _, sr := range []struct {
		name string
		data []float64
	}{{"reaction", reaction}, {"wall_scale", wall}} {
		sum := analysis.Summarize(sr.data)
		period := "-"
		if p, ok := analysis.DominantPeriod(sr.data, meta.Dt); ok {
			period = fmt.Sprintf("%.2f", p)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n", sr.name, sum.Mean, sum.StdDev, sum.Min, sum.Max, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	final := reaction[len(reaction)-1]
	band := tolerance * math.Max(math.Abs(final), 1)
	if step := analysis.SettlingStep(reaction, final, band); step >= 0 {
		fmt.Printf("\nreaction settles within ±%.3f at step %d\n", band, samples[step].Step)
	} else {
		fmt.Printf("\nreaction does not settle within ±%.3f\n", band)
	}

	ps := analysis.PowerSpectrum(reaction)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("reaction spectrum"),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	if svgPath != "" {
		return export.WriteFile(svgPath, export.SeriesSVG(reaction, 800, 300, "#4fc3f7"), os.Stdout)
	}
	return nil
}

func tuneWall(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning %s: %d kp × %d ki (target %.2f)...\n", label, len(kpGrid), len(kiGrid), cfg.Run.TargetReaction)
	best, score, trials, err := optim.TuneWall(ctx, cfg, cfg.Run.Seed, kpGrid, kiGrid)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tTRACKING")
	for _, tr := range optim.Ranked(trials) {
		if tr.Err != nil {
			fmt.Fprintf(w, "%g\t%g\t%v\n", tr.Params["kp"], tr.Params["ki"], tr.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%g\t%.4f\n", tr.Params["kp"], tr.Params["ki"], tr.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: --kp %g --ki %g (tracking %.4f)\n", best["kp"], best["ki"], score)
	return nil
}

func sweepParamCmd(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %s\n", sweepParam, label)
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Seed:      cfg.Run.Seed,
	}, experiment.NewRegistry(), os.Stderr)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tREACTION\tPEAK\tENERGY\tWALL\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%.4f\t%.4f\n", r.ParamValue, r.FinalReaction, r.PeakReaction, r.FinalEnergy, r.FinalWall)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if scenario.Description != "" {
		fmt.Printf("%s: %s\n", scenario.Name, scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), os.Stdout)
	for _, r := range results {
		runID, saveErr := st.Save(storage.RunInfo{
			Preset:    r.Label,
			Seed:      r.Seed,
			Dt:        r.Config.Run.Dt,
			Steps:     r.Config.TotalSteps(),
			Particles: r.Config.Design.Particles,
			AdaptWall: r.Config.Run.AdaptWall,
		}, r.Result)
		if saveErr != nil {
			return saveErr
		}
		fmt.Printf("  %s: %s (reaction %.4f)\n", r.Label, runID, r.Result.Final().PackingReaction)
	}
	return err
}
