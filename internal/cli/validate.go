package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groundworklabs/groundwork/internal/compiler"
	"github.com/groundworklabs/groundwork/internal/kernel"
)

// NewValidateCommand creates the validate subcommand: load a model and
// report each rule's validation outcome.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a model's rules",
		Long:  "Loads a CUE model and reports, per rule, whether it reduces to a groundable clause.",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := compiler.LoadModel(modelPath)
			if err != nil {
				return err
			}

			failures := 0
			for _, spec := range m.Rules {
				var inst kernel.GroundInstancer
				if spec.Hard {
					inst = kernel.ConstraintLogicalRule{}
				} else {
					inst = kernel.WeightedLogicalRule{Weight: spec.Weight}
				}

				k, err := kernel.New(spec.Formula, inst, m.Registry)
				if err != nil {
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", spec.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s: %s\n", spec.Name, k.Clause().String())
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d rules failed validation", failures, len(m.Rules))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to the CUE model file or directory (required)")
	cmd.MarkFlagRequired("model")

	return cmd
}
