package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/automation"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/optim"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/viz"
)

// stabilityThreshold is the speed (nm/ps) above which a sample counts as a
// blow-up for the stability metric.
const stabilityThreshold = 50.0

var (
	dataDir     string
	configFile  string
	preset      string
	verbose     bool
	species     string
	temperature float64
	dt          float64
	steps       int
	sampleEvery int
	threads     int
	seed        uint64
	layers      int
	period      int
	velocity    float64
	bulkHeight  float64
	resume      string
	noSave      bool
	format      string
	outPath     string
	theme       string
	perFrame    int
	benchSteps  int
	benchPool   []int
	replicas    int
	sweepTemps  []float64
	sweepDiss   []float64
	spectrum    bool
	projection  string
	pxPerNm     float64

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "mdsim",
	})
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdsim",
		Short: "parallel Langevin molecular dynamics for thin-film deposition",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with the terminal monitor",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().IntVar(&perFrame, "per-frame", 10, "steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot temperature, particle count and density profile of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&spectrum, "spectrum", false, "also plot the temperature fluctuation spectrum")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, csv, svg, series-svg)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&projection, "projection", "side", "svg projection (side, top)")
	exportCmd.Flags().Float64Var(&pxPerNm, "scale", 120, "svg pixels per nm")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second across worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchThreads,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "bench-steps", 200, "steps per measurement")
	benchCmd.Flags().IntSliceVar(&benchPool, "pool", []int{1, 2, 4, 8}, "worker counts to measure")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent replicas and report temperature statistics",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&replicas, "replicas", 4, "number of replicas")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search temperature and dissipation for thermostat accuracy",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepTemps, "temperatures", []float64{300, 600, 900}, "temperatures to try (K)")
	sweepCmd.Flags().Float64SliceVar(&sweepDiss, "dissipations", []float64{0.1, 0.5, 2}, "dissipation coefficients to try (1/ps)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a staged scenario from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(scenarioCmd)
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the final state")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, benchCmd,
		ensembleCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&species, "species", def.Species, "species ("+strings.Join(physics.SpeciesNames(), ", ")+")")
	f.Float64Var(&temperature, "temperature", def.Temperature, "thermostat temperature (K)")
	f.Float64Var(&dt, "dt", def.Dt, "integration step (ps)")
	f.IntVar(&steps, "steps", def.Steps, "number of steps")
	f.IntVar(&sampleEvery, "sample-every", def.SampleEvery, "steps between samples")
	f.IntVar(&threads, "threads", def.Threads, "worker count (0 = one per CPU)")
	f.Uint64Var(&seed, "seed", def.Seed, "random seed")
	f.IntVar(&layers, "layers", def.LatticeLayers, "substrate thickness in unit cells")
	f.IntVar(&period, "period", def.Injection.Period, "steps between injected particles (0 = off)")
	f.Float64Var(&velocity, "velocity", def.Injection.Velocity, "injection speed (nm/ps)")
	f.Float64Var(&bulkHeight, "bulk-height", def.BulkHeight, "height above which particles are free (nm)")
	f.StringVar(&resume, "resume", "", "continue from the particles of a stored run")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("species") {
		cfg.Species = species
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("threads") {
		cfg.Threads = threads
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("layers") {
		cfg.LatticeLayers = layers
	}
	if flags.Changed("period") {
		cfg.Injection.Period = period
	}
	if flags.Changed("velocity") {
		cfg.Injection.Velocity = velocity
	}
	if flags.Changed("bulk-height") {
		cfg.BulkHeight = bulkHeight
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSimulator(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, physics.Species, error) {
	s, err := cfg.SpeciesValue()
	if err != nil {
		return nil, 0, err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return nil, 0, err
	}

	opts = append(opts, sim.WithLogger(logger), sim.WithBulkHeight(cfg.BulkHeight))

	if resume == "" {
		simulator, err := sim.Build(params, s, cfg.LatticeLayers, opts...)
		return simulator, s, err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(resume)
	if err != nil {
		return nil, 0, fmt.Errorf("resume %s: %w", resume, err)
	}
	particles, err := st.LoadParticles(resume)
	if err != nil {
		return nil, 0, fmt.Errorf("resume %s: %w", resume, err)
	}
	if meta.Parameters.SpaceSize != params.SpaceSize {
		return nil, 0, fmt.Errorf("%w: run %s has domain %v, config has %v",
			dynamo.ErrInvalidConfig, resume, meta.Parameters.SpaceSize, params.SpaceSize)
	}
	logger.Info("resuming", "run", resume, "particles", len(particles))
	simulator, err := sim.Restore(params, s, particles, opts...)
	return simulator, s, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, sp, err := buildSimulator(cfg, sim.WithMetrics(
		metrics.NewEnergy(),
		metrics.NewThermometer(),
		metrics.NewStability(stabilityThreshold),
		metrics.NewThermostatLoad(),
	))
	if err != nil {
		return err
	}
	defer s.Close()

	params := s.Parameters()
	logger.Info("starting run",
		"species", sp,
		"particles", s.Grid().Count(),
		"steps", cfg.Steps,
		"threads", params.Threads,
		"temperature", params.Temperature,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := s.Run(ctx, sim.Config{Steps: cfg.Steps, SampleEvery: cfg.SampleEvery})
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted", "steps", result.StepsTaken)
	case err != nil:
		return err
	}

	printSummary(os.Stdout, result)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Run{
		Species:    sp,
		Parameters: params,
		Result:     result,
		Particles:  s.Grid().Particles(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)
	return nil
}

func printSummary(w io.Writer, result *sim.Result) {
	final := 0.0
	if n := len(result.Temperatures); n > 0 {
		final = result.Temperatures[n-1]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(tw, "injected\t%d\n", result.Injected)
	fmt.Fprintf(tw, "elapsed\t%v\n", result.Elapsed.Round(time.Millisecond))
	if result.Elapsed > 0 {
		fmt.Fprintf(tw, "steps/sec\t%.0f\n", float64(result.StepsTaken)/result.Elapsed.Seconds())
	}
	fmt.Fprintf(tw, "final temperature\t%.2f K\n", final)
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%.4g\n", name, result.Metrics[name])
	}
	tw.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)
	s, sp, err := buildSimulator(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []viz.Option{
		viz.WithTheme(theme),
		viz.WithStepsPerTick(perFrame),
		viz.WithTitle(sp.String()),
	}
	if cmd.Flags().Changed("steps") {
		opts = append(opts, viz.WithMaxSteps(cfg.Steps))
	}
	return viz.Run(s, opts...)
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
	fmt.Fprintln(w, "ID\tSPECIES\tTIME\tSTEPS\tPARTICLES\tINJECTED\tT_FINAL")

	for _, run := range runs {
		final := "-"
		if n := len(run.Temperatures); n > 0 {
			final = fmt.Sprintf("%.1fK", run.Temperatures[n-1])
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Species,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Particles,
			run.Injected,
			final,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if len(meta.Temperatures) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("species: %s\n", meta.Species)
	fmt.Printf("samples: %d\n\n", len(meta.Temperatures))

	fmt.Println(asciigraph.Plot(meta.Temperatures,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("temperature (K) vs sample"),
	))
	fmt.Println()

	if len(meta.Counts) > 1 {
		counts := make([]float64, len(meta.Counts))
		for i, c := range meta.Counts {
			counts[i] = float64(c)
		}
		fmt.Println(asciigraph.Plot(counts,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("particles vs sample"),
		))
		fmt.Println()
	}

	if len(meta.DensityProfile) > 1 {
		fmt.Println(asciigraph.Plot(meta.DensityProfile,
			asciigraph.Height(8),
			asciigraph.Caption("density (1/nm³) by Z layer, bottom to top"),
		))
		fmt.Println()
	}

	if spectrum && len(meta.Times) > 1 {
		interval := meta.Times[1] - meta.Times[0]
		freqs, power, err := analysis.Spectrum(meta.Temperatures, interval)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(power[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("temperature power spectrum, peak at %.3g 1/ps", analysis.Dominant(freqs, power))),
		))
		if acf := analysis.Autocorrelation(meta.Temperatures, len(meta.Temperatures)/4); acf != nil {
			fmt.Println()
			fmt.Println(asciigraph.Plot(acf,
				asciigraph.Height(6),
				asciigraph.Width(80),
				asciigraph.Caption("temperature autocorrelation vs lag (samples)"),
			))
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return storage.ExportJSON(w, meta)
	case "csv":
		return storage.ExportCSV(w, meta)
	case "svg":
		proj, err := export.ParseProjection(projection)
		if err != nil {
			return err
		}
		ps, err := st.LoadParticles(meta.ID)
		if err != nil {
			return err
		}
		return export.SnapshotSVG(w, ps, meta.Parameters.SpaceSize, proj, pxPerNm)
	case "series-svg":
		return export.SeriesSVG(w, meta.Times, meta.Temperatures, 800, 300, string(viz.ThemeCyberpunk.Secondary))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPECIES\tTEMP\tSTEPS\tINJECTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		injection := "off"
		if p.Injection.Period > 0 {
			injection = fmt.Sprintf("every %d @ %.2g nm/ps", p.Injection.Period, p.Injection.Velocity)
		}
		fmt.Fprintf(w, "%s\t%s\t%.0fK\t%d\t%s\n", name, p.Species, p.Temperature, p.Steps, injection)
	}
	return w.Flush()
}

func benchThreads(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if benchSteps <= 0 {
		return fmt.Errorf("bench-steps must be positive, got %d", benchSteps)
	}

	fmt.Printf("benchmarking %s, %d steps\n\n", cfg.Species, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THREADS\tPARTICLES\tTIME\tSTEPS/SEC\tSPEEDUP")

	baseline := 0.0
	for _, n := range benchPool {
		c := *cfg
		c.Threads = n
		s, _, err := buildSimulator(&c)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := s.Run(context.Background(), sim.Config{Steps: benchSteps, SampleEvery: benchSteps})
		elapsed := time.Since(start)
		count := s.Grid().Count()
		s.Close()
		if err != nil {
			return err
		}

		rate := float64(result.StepsTaken) / elapsed.Seconds()
		if baseline == 0 {
			baseline = rate
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.2fx\n", n, count, elapsed.Round(time.Millisecond), rate, rate/baseline)
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sp, err := cfg.SpeciesValue()
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting ensemble", "replicas", replicas, "steps", cfg.Steps, "seed", params.Seed)
	e := sim.NewEnsemble(params, sp, cfg.LatticeLayers, replicas, sim.WithBulkHeight(cfg.BulkHeight))
	results, err := e.Run(ctx, sim.Config{Steps: cfg.Steps, SampleEvery: cfg.SampleEvery})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tINJECTED\tT_FINAL\tELAPSED")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.2fK\t%v\n",
			params.Seed+uint64(i),
			r.StepsTaken,
			r.Injected,
			r.Temperatures[len(r.Temperatures)-1],
			r.Elapsed.Round(time.Millisecond),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std := sim.FinalTemperatures(results)
	fmt.Printf("\nfinal temperature: %.2f ± %.2f K (target %.0f K)\n", mean, std, params.Temperature)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	search, err := optim.NewGridSearch(
		[]string{"temperature", "dissipation"},
		[][]float64{sweepTemps, sweepDiss},
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eval := func(ctx context.Context, p map[string]float64) (float64, error) {
		c := *base
		c.Temperature = p["temperature"]
		c.Dissipation = p["dissipation"]
		if err := c.Validate(); err != nil {
			return 0, err
		}
		s, _, err := buildSimulator(&c)
		if err != nil {
			return 0, err
		}
		defer s.Close()

		result, err := s.Run(ctx, sim.Config{Steps: c.Steps, SampleEvery: c.SampleEvery})
		if err != nil {
			return 0, err
		}
		score := optim.TemperatureError(result, c.Temperature, len(result.Temperatures)/2)
		logger.Debug("trial", "temperature", c.Temperature, "dissipation", c.Dissipation, "score", score)
		return score, nil
	}

	best, score, trials, err := search.Search(ctx, eval)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPERATURE\tDISSIPATION\tMEAN |T-T0|")
	for _, t := range trials {
		result := fmt.Sprintf("%.2fK", t.Score)
		if t.Err != nil {
			result = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%.0fK\t%.3g\t%s\n", t.Params["temperature"], t.Params["dissipation"], result)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: temperature %.0fK, dissipation %.3g (mean deviation %.2fK)\n",
		best["temperature"], best["dissipation"], score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting scenario", "name", scenario.Name, "stages", len(scenario.Stages))
	results, particles, runErr := automation.NewRunner(logger).Run(ctx, base, scenario)

	for _, r := range results {
		fmt.Printf("== %s ==\n", r.Stage)
		if r.Result != nil {
			printSummary(os.Stdout, r.Result)
		}
		fmt.Println()
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if noSave || len(results) == 0 {
		return runErr
	}

	last := results[len(results)-1]
	final := last.Stage
	stageCfg := scenario.Stages[len(results)-1].Apply(*base)
	params, err := stageCfg.Parameters()
	if err != nil {
		return err
	}
	sp, err := base.SpeciesValue()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Run{
		Species:    sp,
		Parameters: params,
		Result:     last.Result,
		Particles:  particles,
	})
	if err != nil {
		return err
	}
	fmt.Printf("final state of %s saved: %s\n", final, runID)
	return runErr
}
