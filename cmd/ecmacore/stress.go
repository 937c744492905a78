package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ecmacore/internal/config"
	"ecmacore/internal/prof"
	"ecmacore/internal/stress"
	"ecmacore/internal/ui"
)

var (
	stressUI        string
	stressTimings   bool
	stressOps       bool
	stressCheckHeap bool
	stressProf      prof.Options
)

func init() {
	stressCmd.Flags().Int("engines", 0, "number of engines run in parallel")
	stressCmd.Flags().Int("steps", 0, "operations per engine")
	stressCmd.Flags().Int("registers", 0, "registers per engine")
	stressCmd.Flags().Int("slots", 0, "environment bindings per engine")
	stressCmd.Flags().Uint64("seed", 0, "workload seed")
	stressCmd.Flags().StringVar(&stressUI, "ui", "auto", "progress display (auto|on|off)")
	stressCmd.Flags().BoolVar(&stressTimings, "timings", false, "print per-engine timings")
	stressCmd.Flags().BoolVar(&stressOps, "ops", false, "print the operation mix")
	stressCmd.Flags().BoolVar(&stressCheckHeap, "check-heap", false, "verify heap invariants after every collection")
	stressCmd.Flags().StringVar(&stressProf.CPU, "cpuprofile", "", "write a CPU profile to this file")
	stressCmd.Flags().StringVar(&stressProf.Mem, "memprofile", "", "write a heap profile to this file")
	stressCmd.Flags().StringVar(&stressProf.Trace, "runtime-trace", "", "write a Go runtime trace to this file")
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run a randomized value workload on several engines and check for leaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyStressFlags(cmd, &cfg); err != nil {
			return err
		}
		mode, err := readUIMode(stressUI)
		if err != nil {
			return err
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
		opts := stress.Options{
			Engines:   cfg.Stress.Engines,
			Steps:     cfg.Stress.Steps,
			Registers: cfg.Stress.Registers,
			Slots:     cfg.Stress.Slots,
			Seed:      cfg.Stress.Seed,
			Context:   ctxOpts,
			CheckHeap: stressCheckHeap,
		}
		session, err := prof.Start(stressProf)
		if err != nil {
			return err
		}
		defer func() {
			if err := session.Stop(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "prof: %v\n", err)
			}
		}()
		var report stress.Report
		err = guardFatal(cmd.ErrOrStderr(), tracer, func() error {
			var runErr error
			if shouldUseTUI(mode) {
				report, runErr = runStressWithUI(cmd.Context(), opts)
			} else {
				report, runErr = stress.Run(cmd.Context(), opts, nil)
			}
			return runErr
		})
		printStressReport(cmd.OutOrStdout(), report)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", color.RedString("FAILED"), err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d engines, no leaks\n", color.GreenString("ok"), len(report.Results))
		return nil
	},
}

func applyStressFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	for name, dst := range map[string]*int{
		"engines":   &cfg.Stress.Engines,
		"steps":     &cfg.Stress.Steps,
		"registers": &cfg.Stress.Registers,
		"slots":     &cfg.Stress.Slots,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Changed("seed") {
		seed, err := flags.GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Stress.Seed = seed
	}
	return cfg.Validate()
}

func runStressWithUI(ctx context.Context, opts stress.Options) (stress.Report, error) {
	type outcome struct {
		report stress.Report
		err    error
	}
	events := make(chan stress.Event, 256)
	done := make(chan outcome, 1)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		r, err := stress.Run(ctx, opts, events)
		done <- outcome{report: r, err: err}
	}()

	model := ui.NewProgressModel(fmt.Sprintf("stress: %d engines", opts.Engines), opts.Engines, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The UI may quit early on ctrl+c; stop the engines and drain.
	cancel()
	for range events {
	}
	res := <-done
	if uiErr != nil {
		return res.report, uiErr
	}
	return res.report, res.err
}

func printStressReport(out io.Writer, report stress.Report) {
	p := message.NewPrinter(language.English)
	for _, r := range report.Results {
		if r.ID == "" {
			continue
		}
		p.Fprintf(out, "engine %d [%s]: %d steps, %d allocs, peak %d bytes, %d gc runs, %d objects swept\n",
			r.Engine, shortID(r.ID), r.Steps, r.Heap.AllocCount, r.Heap.PeakBytes, r.Counters.GCRuns, r.Counters.ObjectsSwept)
		if stressOps && len(r.Ops) > 0 {
			names := make([]string, 0, len(r.Ops))
			for name := range r.Ops {
				names = append(names, name)
			}
			sort.Strings(names)
			parts := make([]string, 0, len(names))
			for _, name := range names {
				parts = append(parts, p.Sprintf("%s=%d", name, r.Ops[name]))
			}
			fmt.Fprintf(out, "  ops: %s\n", strings.Join(parts, " "))
		}
	}
	if stressTimings {
		fmt.Fprintln(out, "timings:")
		for _, ph := range report.Timing.Phases {
			p.Fprintf(out, "  %-12s %10.2f ms  %s\n", ph.Name, ph.DurationMS, ph.Note)
		}
		p.Fprintf(out, "  %-12s %10.2f ms\n", "wall", report.Timing.WallMS)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
