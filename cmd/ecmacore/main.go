package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ecmacore/internal/config"
	"ecmacore/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ecmacore",
	Short: "Tagged value core of an embeddable ECMAScript engine",
	Long: `ecmacore exercises the engine value layer: tagged value words, reference
counted heap entities and the compressed-pointer heap they live in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		return applyColorMode(mode)
	},
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(snapshotCmd)

	rootCmd.PersistentFlags().String("config", "", "path to an ecmacore.toml (default $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// loadConfig resolves the configuration file, the environment and the
// trace flags, in that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return config.Config{}, err
	}
	for name, dst := range map[string]*string{
		"trace":       &cfg.Trace.Output,
		"trace-level": &cfg.Trace.Level,
		"trace-mode":  &cfg.Trace.Mode,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return config.Config{}, err
		}
	}
	// An explicit output with no level means phase-level tracing.
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	return cfg, cfg.Validate()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
