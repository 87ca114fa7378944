package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
	"github.com/IsnaAyustin/final-project-ds/internal/exporter"
	"github.com/IsnaAyustin/final-project-ds/internal/services"
	"github.com/IsnaAyustin/final-project-ds/internal/validation"
)

// maxListedWarnings caps the coercion warnings printed by prepare
const maxListedWarnings = 10

func prepareCmd(opts *options) *cobra.Command {
	var (
		in      string
		out     string
		preview int
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Run the preparation pipeline over a CSV or XLSX file",
		Long: `prepare loads a transactions file, runs the preparation pipeline and
prints its report. With --out the prepared table is written as CSV or XLSX,
chosen by the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				paths, err := config.NewPaths(opts.cfg.Paths)
				if err != nil {
					return err
				}
				in = paths.DatasetFile
			}

			validator := validation.NewFileValidator(opts.logger)
			if err := validator.ValidateDatasetFile(in); err != nil {
				return err
			}

			ds, err := services.LoadDataset(cmd.Context(), in, opts.cfg.Dataset, nil, opts.logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			info := ds.Info()
			fmt.Fprintf(w, "source:      %s (%s)\n", info.Path, info.Format)
			fmt.Fprintf(w, "fingerprint: %s\n\n", info.Fingerprint)
			if err := printReport(w, ds.Table().Report()); err != nil {
				return err
			}

			if preview > 0 {
				if err := printPreview(cmd.Context(), w, ds, preview); err != nil {
					return err
				}
			}

			if out == "" {
				return nil
			}
			path, err := exportPrepared(cmd.Context(), ds, validator, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\nwrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "transactions file (defaults to the configured dataset)")
	cmd.Flags().StringVar(&out, "out", "", "write the prepared table to this .csv or .xlsx file")
	cmd.Flags().IntVar(&preview, "preview", 0, "print the first N prepared rows")

	return cmd
}

func printReport(w io.Writer, report dataprocessing.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "rows\t%d\n", report.Rows)
	dropped := "-"
	if len(report.DroppedColumns) > 0 {
		dropped = strings.Join(report.DroppedColumns, ", ")
	}
	fmt.Fprintf(tw, "dropped columns\t%s\n", dropped)

	fmt.Fprintln(tw, "\ncolumn\timputed\tmode\tundefined")
	for _, column := range reportColumns(report) {
		mode := report.Modes[column]
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n",
			column, report.ImputedCounts[column], mode, report.UndefinedCounts[column])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(report.Warnings) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%d numeric values coerced to undefined\n", len(report.Warnings))
	for i, warning := range report.Warnings {
		if i == maxListedWarnings {
			fmt.Fprintf(w, "  ... and %d more\n", len(report.Warnings)-maxListedWarnings)
			break
		}
		fmt.Fprintf(w, "  %s\n", warning)
	}
	return nil
}

// reportColumns lists every column named anywhere in the report
func reportColumns(report dataprocessing.Report) []string {
	seen := make(map[string]bool)
	for column := range report.ImputedCounts {
		seen[column] = true
	}
	for column := range report.Modes {
		seen[column] = true
	}
	for column := range report.UndefinedCounts {
		seen[column] = true
	}
	columns := make([]string, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func printPreview(ctx context.Context, w io.Writer, ds *services.DatasetService, limit int) error {
	p := ds.Preview(ctx, limit)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, strings.Join(p.Columns, "\t"))
	for _, row := range p.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d of %d rows)\n", len(p.Rows), p.Total)
	return nil
}

func exportPrepared(ctx context.Context, ds *services.DatasetService, validator *validation.FileValidator, out string) (string, error) {
	format, err := exporter.ParseFormat(filepath.Ext(out))
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", out, err)
	}
	if err := validator.ValidateOutputDirectory(filepath.Dir(abs)); err != nil {
		return "", err
	}
	writer := exporter.NewWriter(&config.Paths{ExportsDir: filepath.Dir(abs)})
	return ds.ExportFile(ctx, writer, abs, format)
}
