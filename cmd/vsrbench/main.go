package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/vsrbench/internal/config"
	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/export"
	"github.com/san-kum/vsrbench/internal/logging"
	"github.com/san-kum/vsrbench/internal/storage"
	"github.com/san-kum/vsrbench/internal/sweep"
	"github.com/san-kum/vsrbench/internal/terrain"
	"github.com/san-kum/vsrbench/internal/transport/observer"
	"github.com/san-kum/vsrbench/internal/viz"
)

var (
	logLevel   string
	configFile string
	preset     string
	workers    int
	output     string
	evolution  string
	episode    string
	jsonOut    string
	plot       bool
	draw       bool
	svgOut     string
	evoSVG     string
	addr       string
	every      int
	wait       bool
	hills      int
	length     float64
	height     float64
	seed       int64
	width      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vsrbench",
		Short:         "voxel-based soft robot simulation benchmark",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run every trial of a parameter sweep and write the result table",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent trials (0 = one per CPU)")
	sweepCmd.Flags().StringVarP(&output, "output", "o", "", "results sink: .csv, .csv.zst, .db (default stdout)")
	sweepCmd.Flags().StringVar(&evolution, "evolution", "", "time-evolution sink (cantilever only)")

	runCmd := &cobra.Command{
		Use:   "run [shape]",
		Short: "run a single episode and print its fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runEpisode,
	}
	runCmd.Flags().StringVar(&episode, "episode", "", "episode kind (locomotion, cantilever)")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export the run as JSON (- for stdout)")
	runCmd.Flags().BoolVar(&plot, "plot", true, "plot the displacement series when there is one")
	runCmd.Flags().BoolVar(&draw, "draw", false, "draw the final snapshot")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final snapshot as SVG")
	runCmd.Flags().StringVar(&evoSVG, "evolution-svg", "", "write the displacement series as SVG")

	watchCmd := &cobra.Command{
		Use:   "watch [shape]",
		Short: "run a single episode streaming snapshots over websocket",
		Args:  cobra.ExactArgs(1),
		RunE:  watchEpisode,
	}
	watchCmd.Flags().StringVar(&episode, "episode", "", "episode kind (locomotion, cantilever)")
	watchCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	watchCmd.Flags().IntVar(&every, "every", 2, "send every n-th snapshot")
	watchCmd.Flags().BoolVar(&wait, "wait", true, "wait for the first client before stepping")

	terrainCmd := &cobra.Command{
		Use:   "terrain",
		Short: "plot a generated terrain profile",
		Args:  cobra.NoArgs,
		RunE:  plotTerrain,
	}
	terrainCmd.Flags().IntVar(&hills, "hills", terrain.DefaultHills, "number of hills")
	terrainCmd.Flags().Float64Var(&length, "length", terrain.DefaultLength, "terrain length")
	terrainCmd.Flags().Float64Var(&height, "height", 5, "maximum hill height")
	terrainCmd.Flags().Int64Var(&seed, "seed", terrain.DefaultSeed, "random seed")
	terrainCmd.Flags().IntVar(&width, "width", 100, "plot width")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, p := range config.ListPresets() {
					fmt.Printf("  %s\n", p)
				}
				return nil
			}
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			return yaml.NewEncoder(os.Stdout).Encode(cfg)
		},
	}

	rootCmd.AddCommand(sweepCmd, runCmd, watchCmd, terrainCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig applies, in order: defaults, preset, config file, --log-level.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(cfg.LogLevel, os.Stderr), nil
}

func newRegistry(cfg *config.Config, logger *slog.Logger) *experiment.Registry {
	return experiment.NewRegistry(cfg.LocomotionEpisode(), cfg.CantileverEpisode(), logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Results = output
	}
	if cmd.Flags().Changed("evolution") {
		cfg.Output.Evolution = evolution
	}

	planCfg, err := cfg.PlanConfig()
	if err != nil {
		return err
	}
	plan, err := sweep.NewPlan(planCfg, experiment.DefaultBinder(), logger)
	if err != nil {
		return err
	}
	registry := newRegistry(cfg, logger)

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("sweep starting", "episode", cfg.Episode, "trials", plan.Len(), "workers", dynamo.Workers(cfg.Workers))
	start := time.Now()
	h := &sweep.Harness{Workers: cfg.Workers, Progress: os.Stderr, Logger: logger}
	report, runErr := h.Run(ctx, plan.Trials(), func(ctx context.Context, t experiment.Trial) (experiment.Outcome, error) {
		return registry.Run(ctx, t, nil)
	})
	logger.Info("sweep finished", "rows", len(report.Rows), "failed", report.Failed, "elapsed", time.Since(start).Round(time.Millisecond))

	table, err := sweep.NewTable(report.Rows)
	if err != nil {
		return errors.Join(runErr, err)
	}
	if err := writeTable(cfg.Output.Results, storage.DefaultTable, table); err != nil {
		return err
	}

	if cfg.Output.Evolution != "" {
		evo, err := report.Evolution.Table()
		switch {
		case errors.Is(err, dynamo.ErrNoResults):
			logger.Warn("no time evolution recorded", "episode", cfg.Episode)
		case err != nil:
			return err
		default:
			if err := writeTable(cfg.Output.Evolution, "evolution", evo); err != nil {
				return err
			}
		}
	}
	return runErr
}

func writeTable(path, name string, t *sweep.Table) error {
	sink, err := storage.OpenTable(path, name)
	if err != nil {
		return err
	}
	if err := sink.Write(t.Header, t.Records); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}

// singleTrial resolves the shape argument into one trial with the config's
// baseline settings and material.
func singleTrial(cmd *cobra.Command, cfg *config.Config, shapeArg string) (experiment.Trial, error) {
	shape, err := experiment.ParseShape(shapeArg)
	if err != nil {
		return experiment.Trial{}, err
	}
	material, err := cfg.ResolvedMaterial()
	if err != nil {
		return experiment.Trial{}, err
	}
	t := experiment.Trial{
		Episode:  cfg.Episode,
		Shape:    shape,
		Settings: cfg.Settings,
		Material: material,
	}
	if cmd.Flags().Changed("episode") {
		t.Episode = episode
	}
	t.StaticKeys = []dynamo.Field{
		{Name: "episode", Value: t.Episode},
		{Name: "shape", Value: shape.String()},
		{Name: "nVoxels", Value: shape.Count()},
	}
	return t, nil
}

func runEpisode(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	trial, err := singleTrial(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var last dynamo.Snapshot
	obs := dynamo.ObserverFunc(func(s dynamo.Snapshot) { last = s })

	out, err := newRegistry(cfg, logger).Run(ctx, trial, obs)
	if err != nil {
		logger.Error("episode failed", logging.FieldArgs(trial.StaticKeys, "error", err)...)
		return err
	}

	if jsonOut == "-" {
		return storage.ExportJSON("-", storage.NewRunExport(trial.Episode, trial.Shape.String(), trial.Settings, out.Fields, out.Evolution))
	}

	fmt.Println(viz.Heading(trial.Episode, sweep.FormatKeys(trial.StaticKeys)))
	if err := viz.FieldTable(os.Stdout, out.Fields); err != nil {
		return err
	}
	if plot && out.Evolution != nil {
		if g := viz.Plot(out.Evolution.Column("y"), "y displacement", 80, 12); g != "" {
			fmt.Printf("\n%s\n", g)
		}
	}
	if draw {
		c := viz.NewCanvas(60, 15)
		c.DrawSnapshot(last, dynamo.BoundingBox{})
		fmt.Printf("\n%s", c)
	}
	if svgOut != "" {
		if err := writeFile(svgOut, export.SnapshotSVG(last, 800, 400)); err != nil {
			return err
		}
	}
	if evoSVG != "" && out.Evolution != nil {
		if err := writeFile(evoSVG, export.SeriesSVG(out.Evolution.Column("st"), out.Evolution.Column("y"), 800, 300, "#00ff88")); err != nil {
			return err
		}
	}
	if jsonOut != "" {
		if err := storage.ExportJSON(jsonOut, storage.NewRunExport(trial.Episode, trial.Shape.String(), trial.Settings, out.Fields, out.Evolution)); err != nil {
			return err
		}
		fmt.Println(viz.Subtle.Render("exported to " + jsonOut))
	}
	return nil
}

func writeFile(path, content string) error {
	if content == "" {
		return fmt.Errorf("nothing to write to %s", path)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func watchEpisode(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	trial, err := singleTrial(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	hub := observer.NewHub(every, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	defer func() {
		hub.Close()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Println(viz.Title.Render("streaming on ws://" + addr + "/ws"))
	if wait {
		logger.Info("waiting for a client", "addr", addr)
		select {
		case err := <-serveErr:
			return err
		default:
		}
		if err := hub.WaitForClient(ctx); err != nil {
			return err
		}
	}

	out, err := newRegistry(cfg, logger).Run(ctx, trial, hub)
	if err != nil {
		return err
	}
	logger.Info("episode finished", "dropped", hub.Dropped())
	return viz.FieldTable(os.Stdout, out.Fields)
}

func plotTerrain(cmd *cobra.Command, args []string) error {
	profile := terrain.Generate(hills, length, height, rand.New(rand.NewSource(seed)))
	if err := profile.Validate(); err != nil {
		return err
	}

	// resample at even x so the plot is not distorted by uneven hill widths
	n := max(width, 2)
	ys := make([]float64, n)
	last := profile.Xs[profile.Len()-1]
	j := 0
	for i := range ys {
		x := last * float64(i) / float64(n-1)
		for j+2 < profile.Len() && profile.Xs[j+1] < x {
			j++
		}
		x0, x1 := profile.Xs[j], profile.Xs[j+1]
		f := 0.0
		if x1 > x0 {
			f = min(max((x-x0)/(x1-x0), 0), 1)
		}
		ys[i] = profile.Ys[j] + f*(profile.Ys[j+1]-profile.Ys[j])
	}

	fmt.Println(viz.Heading("terrain", fmt.Sprintf("%d hills, seed %d", hills, seed)))
	fmt.Println(viz.Plot(ys, fmt.Sprintf("length %.0f, %d vertices", last, profile.Len()), width, 10))
	return nil
}
