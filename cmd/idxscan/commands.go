package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leengari/idxscan/internal/config"
	"github.com/leengari/idxscan/internal/engine"
	"github.com/leengari/idxscan/internal/executor"
	"github.com/leengari/idxscan/internal/logging"
	"github.com/leengari/idxscan/internal/metrics"
	"github.com/leengari/idxscan/internal/plan"
	"github.com/leengari/idxscan/internal/planner"
	"github.com/leengari/idxscan/internal/predicate"
	"github.com/leengari/idxscan/internal/storage/loader"
)

type options struct {
	configPath string
	schemaPath string
	from       string
	columns    []string
	where      []string
	stats      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "idxscan",
		Short:         "Run index-hinted scans over a schema fixture",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (YAML, JSON or TOML)")
	root.PersistentFlags().StringVar(&opts.schemaPath, "schema", "", "database fixture to load")
	_ = root.MarkPersistentFlagRequired("schema")

	root.AddCommand(newQueryCmd(opts), newExplainCmd(opts))
	return root
}

func addQueryFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.from, "from", "", "table reference, e.g. abcd@{FORCE_INDEX=cd,DESC}")
	cmd.Flags().StringSliceVar(&opts.columns, "select", []string{"*"}, "output columns")
	cmd.Flags().StringArrayVar(&opts.where, "where", nil, "predicate term, e.g. \"c BETWEEN 20 AND 30\" (repeatable)")
	_ = cmd.MarkFlagRequired("from")
}

func newQueryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query and print its rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, q, cleanup, err := setup(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := eng.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if opts.stats {
				fmt.Fprintf(cmd.ErrOrStderr(), "keys scanned: %d, rows fetched: %d, rows returned: %d\n",
					res.Stats.KeysScanned, res.Stats.RowsFetched, res.Stats.RowsReturned)
			}
			return nil
		},
	}
	addQueryFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print scan statistics to stderr")
	return cmd
}

func newExplainCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the plan chosen for a query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, q, cleanup, err := setup(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			root, err := eng.Explain(cmd.Context(), q)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), plan.PrintTree(root))
			return err
		},
	}
	addQueryFlags(cmd, opts)
	return cmd
}

func setup(opts *options) (*engine.Engine, planner.Query, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, planner.Query{}, nil, err
	}
	logger, closeFn := logging.SetupLogger(cfg.Log)
	slog.SetDefault(logger)
	metrics.SetEnabled(cfg.Metrics.Enabled)

	where, err := predicate.ParseTerms(opts.where)
	if err != nil {
		closeFn()
		return nil, planner.Query{}, nil, err
	}

	eng, err := engine.New(engine.Options{
		BatchSize:     cfg.Scan.BatchSize,
		HintCacheSize: cfg.Planner.HintCacheSize,
		Logger:        logger,
	})
	if err != nil {
		closeFn()
		return nil, planner.Query{}, nil, err
	}
	eng.AddObserver(engine.NewLoggingObserver(logger))

	if _, err := loader.LoadDatabase(opts.schemaPath, eng, logger); err != nil {
		closeFn()
		return nil, planner.Query{}, nil, err
	}

	q := planner.Query{From: opts.from, Columns: opts.columns, Where: where}
	return eng, q, closeFn, nil
}

func printResult(w io.Writer, res *executor.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}
