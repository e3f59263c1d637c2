package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/pkg/profile"
	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/experiment"
	"github.com/san-kum/lbmsim/internal/optim"
	"github.com/san-kum/lbmsim/internal/sim"
	"github.com/san-kum/lbmsim/internal/storage"
	"github.com/san-kum/lbmsim/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (dx=%g, dt=%g, t=%g)...\n", cfg.Name, cfg.SpaceStep, exp.Simulation().Dt(), cfg.Duration)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	// a failed run still stores what was sampled before the failure
	if result == nil {
		return runErr
	}

	fmt.Printf("completed %d steps in %v\n", result.Steps, elapsed)
	if !noSave {
		st, err := storage.Open(dataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.Save(context.Background(), cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	printMetrics(result.Metrics)
	return runErr
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, sim.WithLogger(log))
	if err != nil {
		return err
	}

	name := defaultField(cfg)
	exact, err := exactFormula(cfg, name)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(s, cfg.Name, name, exact, cfg.Duration)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func listPresets(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range registry.ListPresets() {
		cfg, err := registry.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, cfg.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\node solvers:")
	for _, name := range registry.ListSolvers() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func printScheme(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, sim.WithLogger(log))
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.NewRegistry().GetPreset(args[0])
	if err != nil {
		return err
	}
	if err := config.Save(args[1], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func runConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := experiment.Convergence(ctx, cfg, dxList, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	fmt.Printf("convergence of %s\n\n", report.Field)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DX\tL2 ERROR\tORDER")
	for i := range report.Dx {
		order := "-"
		if i > 0 {
			order = fmt.Sprintf("%.3f", report.Orders[i-1])
		}
		fmt.Fprintf(w, "%g\t%.3e\t%s\n", report.Dx[i], report.Errors[i], order)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, value, trials, err := optim.Tune(ctx, cfg, names, ranges, metricName, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\tVALUE\tERROR")
	for _, tr := range trials {
		status := ""
		if tr.Err != nil {
			status = tr.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%.6g\t%s\n", formatParams(names, tr.Params), tr.Value, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at %s\n", metricName, value, formatParams(names, best))
	return nil
}

func formatParams(names []string, values map[string]float64) string {
	s := ""
	for i, name := range names {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", name, values[name])
	}
	return s
}

func benchScheme(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(filepath.Join(dataDir, "profile")), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(filepath.Join(dataDir, "profile")), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	ctx, cancel := signalContext()
	defer cancel()

	dxs := []float64{cfg.SpaceStep, cfg.SpaceStep / 2, cfg.SpaceStep / 4}
	generators := []string{config.GeneratorSerial, config.GeneratorParallel}

	fmt.Printf("benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DX\tGENERATOR\tSTEPS\tTIME\tSTEPS/SEC")

	for _, d := range dxs {
		for _, gen := range generators {
			c := cfg.Clone()
			c.SpaceStep = d
			c.Generator = gen

			s, err := sim.New(c, sim.WithLogger(log))
			if err != nil {
				return err
			}

			start := time.Now()
			steps, err := s.Run(ctx, c.Duration)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%g\t%s\t%d\t%v\t%.0f\n",
				d, gen, steps, elapsed.Round(time.Microsecond), float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
