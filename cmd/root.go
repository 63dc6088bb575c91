// cmd/root.go
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"transitsim/internal/config"
	"transitsim/internal/scenario"
	"transitsim/internal/simulate"
)

var (
	logLevel   string
	configPath string
	inputPath  string
	outputPath string
	seedFlag   int64
)

var rootCmd = &cobra.Command{
	Use:   "transitsim",
	Short: "Discrete-event bus transit demand simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation request and print the simulation result",
	RunE:  runSimulate,
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit interarrival or alighting distributions to sampled data",
	RunE:  runFit,
}

var fitKind string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config overlay")
	rootCmd.PersistentFlags().StringVar(&inputPath, "in", "", "Input JSON path (defaults to stdin)")
	rootCmd.PersistentFlags().StringVar(&outputPath, "out", "", "Output JSON path (defaults to stdout)")

	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "RNG seed; 0 uses the config file's seed, or derives one from the run's clock if that is also 0")
	fitCmd.Flags().StringVar(&fitKind, "kind", "interarrival", "Which table to fit: interarrival or alighting")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fitCmd)
}

func newLogger() *logrus.Entry {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	runID := uuid.NewString()
	return logger.WithField("run_id", runID)
}

func loadAppConfig() *config.Config {
	if configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("loading config: %v", err)
	}
	return cfg
}

func readInput(v any) error {
	var r io.Reader = os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(v)
}

func writeOutput(v any) error {
	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	appCfg := loadAppConfig()

	var req scenario.SimulationRequest
	if err := readInput(&req); err != nil {
		return err
	}

	seed := seedFlag
	if seed == 0 {
		seed = appCfg.Execution.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	simCfg, err := scenario.Map(&req, seed)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"stations": len(simCfg.Stations),
		"routes":   len(simCfg.Routes),
		"duration": simCfg.TimeCtx.SimDuration,
		"seed":     seed,
	}).Info("starting simulation")

	sim := simulate.New(simCfg, appCfg, logger)
	result := sim.Run()

	logger.Info("simulation complete")
	return writeOutput(result)
}

func runFit(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	var req scenario.FitRequest
	if err := readInput(&req); err != nil {
		return err
	}

	var resp *scenario.FitResponse
	switch fitKind {
	case "interarrival":
		resp = scenario.FitInterarrivalRequest(&req)
	case "alighting":
		resp = scenario.FitAlightingRequest(&req)
	default:
		logger.Fatalf("unknown --kind %q, want interarrival or alighting", fitKind)
	}

	return writeOutput(resp)
}
