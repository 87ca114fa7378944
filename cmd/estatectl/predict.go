package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/prediction"
	"github.com/IsnaAyustin/final-project-ds/internal/services"
	"github.com/IsnaAyustin/final-project-ds/internal/validation"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts/domain"
)

func predictCmd(opts *options) *cobra.Command {
	var (
		modelPath string
		in        domain.PredictionInput
		explain   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the sale amount of one property",
		Example: `  estatectl predict --assessed 250000 --year 2022 \
    --property Residential --residential "Single Family" --explain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if modelPath == "" {
				paths, err := config.NewPaths(opts.cfg.Paths)
				if err != nil {
					return err
				}
				modelPath = paths.ModelFile
			}
			if err := validation.NewFileValidator(opts.logger).ValidateModelFile(modelPath); err != nil {
				return err
			}

			svc, err := services.LoadModel(cmd.Context(), modelPath, opts.cfg.Prediction, nil, opts.logger)
			if err != nil {
				return err
			}
			if err := svc.CheckBounds(in); err != nil {
				return err
			}

			result, err := svc.Predict(cmd.Context(), in, explain)
			if err != nil {
				var unknown *prediction.UnknownCategoryError
				if errors.As(err, &unknown) {
					return fmt.Errorf("%w (allowed: %s)", err, strings.Join(unknown.Allowed, ", "))
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printPrediction(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model artifact (defaults to the configured model)")
	cmd.Flags().Float64Var(&in.AssessedValue, "assessed", 0, "assessed value")
	cmd.Flags().IntVar(&in.Year, "year", 0, "year of the sale")
	cmd.Flags().StringVar(&in.PropertyType, "property", "", "property type")
	cmd.Flags().StringVar(&in.ResidentialType, "residential", "", "residential type")
	cmd.Flags().BoolVar(&explain, "explain", false, "include per-feature attribution")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	for _, name := range []string{"assessed", "year", "property", "residential"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func printPrediction(w io.Writer, result *domain.PredictionResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "model\t%s\n", result.Model)
	fmt.Fprintf(tw, "predicted price\t%.2f\n", result.PredictedPrice)
	fmt.Fprintf(tw, "difference\t%+.2f\n", result.Difference)

	if a := result.Attribution; a != nil {
		fmt.Fprintf(tw, "\nbase value\t%.2f\n", a.BaseValue)
		for _, c := range a.Contributions {
			fmt.Fprintf(tw, "%s = %s\t%+.2f\n", c.Feature, c.Value, c.Contribution)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}
