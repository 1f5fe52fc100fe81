package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/groundworklabs/groundwork/internal/atom"
	"github.com/groundworklabs/groundwork/internal/compiler"
	"github.com/groundworklabs/groundwork/internal/kernel"
	"github.com/groundworklabs/groundwork/internal/store"
)

// NewGroundCommand creates the ground subcommand: load model and data, run
// full grounding over every rule, and print the resulting ground rules.
func NewGroundCommand(opts *RootOptions) *cobra.Command {
	var (
		modelPath string
		dataPath  string
		dbPath    string
		writeName string
	)

	cmd := &cobra.Command{
		Use:   "ground",
		Short: "Ground a model against a data file",
		Long: "Loads a CUE model and a YAML fact file, opens a database view reading " +
			"every partition in the fact file, grounds all rules, and prints the " +
			"ground rules in store-row order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := compiler.LoadModel(modelPath)
			if err != nil {
				return err
			}
			facts, err := LoadFacts(dataPath)
			if err != nil {
				return err
			}
			kernels, err := m.Kernels()
			if err != nil {
				return err
			}

			ds, err := store.Open(dbPath, m.Registry)
			if err != nil {
				return err
			}
			defer ds.Close()

			for _, p := range m.Registry.Predicates() {
				if err := ds.RegisterPredicate(p); err != nil {
					return err
				}
			}

			partitions, err := InsertFacts(ctx, ds, m, facts)
			if err != nil {
				return err
			}

			write, err := ds.Partition(writeName)
			if err != nil {
				return err
			}

			// Read partitions in name order for a stable view.
			names := make([]string, 0, len(partitions))
			for name := range partitions {
				if name != writeName {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			reads := make([]store.Partition, len(names))
			for i, name := range names {
				reads[i] = partitions[name]
			}

			db, err := ds.GetDatabaseWithClosed(write, m.Closed, reads...)
			if err != nil {
				return err
			}
			defer db.Close()

			mgr := atom.NewPersistedManager(db)
			gks := kernel.NewGroundKernelStore()
			for _, k := range kernels {
				if err := k.GroundAll(ctx, mgr, gks); err != nil {
					return err
				}
			}

			out, err := Render(opts.Format, gks.GroundRules(), m.Registry)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to the CUE model file or directory (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "path to the YAML fact file (required)")
	cmd.Flags().StringVar(&dbPath, "db", ":memory:", "path to the SQLite database")
	cmd.Flags().StringVar(&writeName, "write", "targets", "name of the write partition")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("data")

	return cmd
}
