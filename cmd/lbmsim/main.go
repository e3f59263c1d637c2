package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/san-kum/lbmsim/internal/config"
	"github.com/san-kum/lbmsim/internal/experiment"
	"github.com/san-kum/lbmsim/internal/formula"
	"github.com/san-kum/lbmsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	dx          float64
	duration    float64
	sampleEvery int
	generator   string
	odeSolver   string
	params      []string
	noSave      bool

	field   string
	format  string
	outPath string

	dxList     []float64
	grid       []string
	metricName string

	profileMode string

	log *slog.Logger
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lbmsim",
		Short:        "lattice Boltzmann simulation lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.NewLogger(logLevel, os.Stderr)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lbmsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset|file]",
		Short: "run a simulation and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addOverrideFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "steps between stored snapshots (0 = about 20)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot the final profile of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "", "moment to plot (default: first conserved moment)")

	exportCmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a run as csv, json, svg, png or html",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "csv, json, svg, png, pdf or html")
	exportCmd.Flags().StringVar(&field, "field", "", "moment to export (default: first conserved moment)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout, required for png and pdf)")

	liveCmd := &cobra.Command{
		Use:   "live [preset|file]",
		Short: "watch a simulation in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addOverrideFlags(liveCmd)
	liveCmd.Flags().StringVar(&field, "field", "", "moment to display (default: first conserved moment)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets and ode solvers",
		RunE:  listPresets,
	}

	schemeCmd := &cobra.Command{
		Use:   "scheme [preset|file]",
		Short: "print the compiled scheme",
		Args:  cobra.ExactArgs(1),
		RunE:  printScheme,
	}
	addOverrideFlags(schemeCmd)

	initCmd := &cobra.Command{
		Use:   "init-config [preset] [file]",
		Short: "write a preset as an editable yaml file",
		Args:  cobra.ExactArgs(2),
		RunE:  initConfig,
	}

	convergenceCmd := &cobra.Command{
		Use:   "convergence [preset|file]",
		Short: "measure the error against the exact solution for several space steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runConvergence,
	}
	addOverrideFlags(convergenceCmd)
	convergenceCmd.Flags().Float64SliceVar(&dxList, "dxs", []float64{0.04, 0.02, 0.01}, "space steps")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset|file]",
		Short: "grid search parameters for the smallest metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	addOverrideFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter grid, name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "exact_error", "metric to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench [preset|file]",
		Short: "benchmark the stepping loop",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScheme,
	}
	addOverrideFlags(benchCmd)
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the data directory")

	deleteCmd := &cobra.Command{
		Use:   "delete [run-id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCmd, liveCmd,
		presetsCmd, schemeCmd, initCmd, convergenceCmd, tuneCmd, benchCmd, deleteCmd)
	return rootCmd
}

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dx, "dx", 0, "space step")
	cmd.Flags().Float64Var(&duration, "duration", 0, "final time")
	cmd.Flags().StringVar(&generator, "generator", "", "serial or parallel")
	cmd.Flags().StringVar(&odeSolver, "ode-solver", "", "euler, heun, middle_point or rk4")
	cmd.Flags().StringArrayVar(&params, "param", nil, "parameter override, name=value (repeatable)")
}

// loadConfig resolves arg as a preset or yaml file and applies the flags
// the user actually set.
func loadConfig(cmd *cobra.Command, arg string) (*config.Config, error) {
	cfg, err := experiment.NewRegistry().Resolve(arg)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dx") {
		cfg.SpaceStep = dx
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("generator") {
		cfg.Generator = generator
	}
	if flags.Changed("ode-solver") {
		cfg.ODESolver = odeSolver
	}
	if flags.Lookup("sample-every") != nil && flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	for _, p := range params {
		name, value, err := parseAssignment(p)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		cfg.SetParam(name, v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", s)
	}
	return name, strings.TrimSpace(value), nil
}

// parseGrid turns "name=v1,v2" entries into parallel name and value lists.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, err := parseAssignment(e)
		if err != nil {
			return nil, nil, err
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func defaultField(cfg *config.Config) string {
	if field != "" {
		return field
	}
	return cfg.ConservedMoments()[0]
}

func exactFormula(cfg *config.Config, name string) (*formula.Formula, error) {
	src, ok := cfg.Exact[name]
	if !ok {
		return nil, nil
	}
	return formula.Compile(string(src), []string{"t", "x"}, cfg.Parameters)
}

// signalContext is canceled on interrupt so a long run stops between steps.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
