package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ecmacore/internal/snapshot"
	"ecmacore/internal/stress"
)

var (
	snapshotFormat  string
	snapshotOutput  string
	snapshotSteps   int
	snapshotSummary bool
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", "", "encoding (msgpack|cbor|yaml); defaults to the output extension")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "write the snapshot to a file instead of stdout")
	snapshotCmd.Flags().IntVar(&snapshotSteps, "steps", 2000, "workload steps before the snapshot is taken")
	snapshotCmd.Flags().BoolVar(&snapshotSummary, "summary", false, "print live bytes per kind instead of encoding")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run a short workload on one engine and dump its live heap",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format := snapshot.FormatForPath(snapshotOutput)
		if snapshotFormat != "" {
			if format, err = snapshot.ParseFormat(snapshotFormat); err != nil {
				return err
			}
		}
		tracer, cleanup, err := setupTracing(cmd, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		ctxOpts, err := cfg.ContextOptions(nil)
		if err != nil {
			return err
		}

		var report stress.Report
		err = guardFatal(cmd.ErrOrStderr(), tracer, func() error {
			var runErr error
			report, runErr = stress.Run(cmd.Context(), stress.Options{
				Engines:   1,
				Steps:     snapshotSteps,
				Registers: cfg.Stress.Registers,
				Slots:     cfg.Stress.Slots,
				Seed:      cfg.Stress.Seed,
				Context:   ctxOpts,
				Snapshot:  true,
			}, nil)
			return runErr
		})
		if err != nil {
			return err
		}
		snap := report.Results[0].Snapshot
		if snap == nil {
			return fmt.Errorf("snapshot: engine produced no snapshot")
		}
		doc := snapshot.FromSnapshot(*snap)

		if snapshotSummary {
			printSummary(cmd.OutOrStdout(), &doc)
			return nil
		}
		if snapshotOutput != "" {
			return snapshot.WriteFile(snapshotOutput, &doc, format)
		}
		return snapshot.Encode(cmd.OutOrStdout(), &doc, format)
	},
}

func printSummary(out io.Writer, doc *snapshot.Document) {
	p := message.NewPrinter(language.English)
	live := doc.Live()
	counts := make(map[string]int, len(live))
	for _, r := range doc.Records {
		counts[r.Kind]++
	}
	kinds := make([]string, 0, len(live))
	for k := range live {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{k, p.Sprintf("%d", counts[k]), p.Sprintf("%d", live[k])})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KIND", "BLOCKS", "BYTES").
		Rows(rows...)
	p.Fprintf(out, "engine %s (%s codec): %d live blocks, %d of %d bytes allocated\n",
		doc.Engine, doc.Codec, doc.Heap.LiveBlocks, doc.Heap.AllocatedBytes, doc.Heap.Capacity)
	fmt.Fprintln(out, t.Render())
}
