package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentshop/pipeline"
	"github.com/hupe1980/agentshop/quadratic"
)

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coefficient %q: %w", arg, err)
		}
		out[i] = v
	}
	return out, nil
}

func newSolveCommand() *cobra.Command {
	var describe bool

	cmd := &cobra.Command{
		Use:   "solve a b c",
		Short: "Solve a*x^2 + b*x + c = 0 with the solver pipeline",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			coef, err := parseFloats(args)
			if err != nil {
				return err
			}

			roots, err := quadratic.Solve(cmd.Context(), coef[0], coef[1], coef[2])
			if err != nil {
				return err
			}

			b, err := json.Marshal(roots)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(b))
			if describe {
				fmt.Fprintln(out)
				fmt.Fprint(out, pipeline.Describe(quadratic.Pipeline()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&describe, "describe", "d", false, "Print the pipeline shape")
	// Negative coefficients such as -3 must not be parsed as flags.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newLinearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linear a b",
		Short: "Solve a*x + b = 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coef, err := parseFloats(args)
			if err != nil {
				return err
			}
			x, err := quadratic.SolveLinear(coef[0], coef[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(x, 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)

	return cmd
}
