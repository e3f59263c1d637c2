package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/lbmsim/internal/analysis"
	"github.com/san-kum/lbmsim/internal/export"
	"github.com/san-kum/lbmsim/internal/storage"
	"github.com/san-kum/lbmsim/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(context.Background())
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDX\tDT\tDURATION\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%d\n",
			run.ID[:8],
			run.Name,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Dx,
			run.Dt,
			run.Duration,
			run.Steps,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, res, err := st.LoadResult(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:      %s\n", meta.ID)
	fmt.Printf("name:     %s\n", meta.Name)
	fmt.Printf("created:  %s\n", meta.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("dx:       %g\n", meta.Dx)
	fmt.Printf("dt:       %g\n", meta.Dt)
	fmt.Printf("duration: %g\n", meta.Duration)
	fmt.Printf("steps:    %d\n", meta.Steps)
	fmt.Printf("samples:  %d\n", len(res.Times))

	printMetrics(meta.Metrics)

	fmt.Println("\nspectrum of the final snapshot:")
	for _, name := range res.FieldNames() {
		u, ok := res.Last(name)
		if !ok {
			continue
		}
		ps := analysis.PowerSpectrum(u)
		fmt.Printf("  %s: dominant mode %d\n", name, analysis.DominantMode(ps))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, res, err := st.LoadResult(context.Background(), args[0])
	if err != nil {
		return err
	}

	name := defaultField(meta.Config)
	u, ok := res.Last(name)
	if !ok {
		return fmt.Errorf("%w: %q", export.ErrUnknownField, name)
	}

	series := [][]float64{u}
	legends := []string{name}

	exact, err := exactFormula(meta.Config, name)
	if err != nil {
		return err
	}
	if exact != nil {
		ref, err := analysis.ExactSolution(exact, res.Times[len(res.Times)-1], res.X)
		if err != nil {
			return err
		}
		series = append(series, ref)
		legends = append(legends, "exact")
	}

	caption := fmt.Sprintf("%s  %s at t=%.4g", meta.Name, name, res.Times[len(res.Times)-1])
	fmt.Println(viz.Plot(series, legends, caption, 80, 15))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, res, err := st.LoadResult(context.Background(), args[0])
	if err != nil {
		return err
	}
	name := defaultField(meta.Config)

	// image formats render straight to a file
	if format == "png" || format == "pdf" {
		if outPath == "" {
			return fmt.Errorf("--out is required for %s export", format)
		}
		exact, err := exactFormula(meta.Config, name)
		if err != nil {
			return err
		}
		return export.SavePlot(outPath, res, name, exact)
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
	case "csv":
		return export.WriteCSV(w, res, name)
	case "json":
		return export.WriteJSON(w, export.ExportData{ID: meta.ID, Config: meta.Config, Result: res})
	case "svg":
		snaps, ok := res.Fields[name]
		if !ok {
			return fmt.Errorf("%w: %q", export.ErrUnknownField, name)
		}
		_, err := io.WriteString(w, export.ProfileSVG(res.X, snaps, 800, 400, nil))
		return err
	case "html":
		return export.WriteHTML(w, res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
