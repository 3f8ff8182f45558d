package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/motorlab/internal/config"
	"github.com/san-kum/motorlab/internal/drive"
	"github.com/san-kum/motorlab/internal/gateway"
	"github.com/san-kum/motorlab/internal/storage"
	"github.com/san-kum/motorlab/internal/viz"
	"github.com/san-kum/motorlab/internal/wave"
)

var (
	dataDir      string
	configFile   string
	amplitude    float64
	frequency    float64
	duration     float64
	sendVelocity bool
	positions    []float64
	motors       []int
	tickPeriod   time.Duration
	settleDelay  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "motorlab",
		Short: "actuator trajectory test rig",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".motorlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [waveform]",
		Short: "run a trajectory test (sine, triangle, step, piecewise)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTests,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "test configuration file (yaml)")
	runCmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "amplitude in degrees")
	runCmd.Flags().Float64Var(&frequency, "frequency", config.DefaultFrequency, "frequency in hz")
	runCmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().BoolVar(&sendVelocity, "send-velocity", false, "include velocity commands")
	runCmd.Flags().Float64SliceVar(&positions, "positions", nil, "waypoints for piecewise tests")
	runCmd.Flags().IntSliceVar(&motors, "motors", nil, "active motor ids (default: all group members)")
	runCmd.Flags().DurationVar(&tickPeriod, "tick", drive.DefaultTickPeriod, "control loop period")
	runCmd.Flags().DurationVar(&settleDelay, "settle", drive.DefaultSettleDelay, "settle delay after disabling")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot commanded vs actual for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play a run back as a live chart",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [run_id]",
		Short: "check a saved record for series length mismatches",
		Args:  cobra.ExactArgs(1),
		RunE:  validateRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list gain presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Printf("%-8s kp=%.0f kd=%.0f max_torque=%.0f\n", name, p.Kp, p.Kd, p.MaxTorque)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, replayCmd, validateCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTests(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var tests []config.TestConfig
	if configFile != "" {
		var err error
		tests, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		if len(args) != 1 {
			return fmt.Errorf("either a waveform argument or --config is required")
		}
		tests = []config.TestConfig{{
			Kind: wave.Kind(args[0]),
			Params: wave.Params{
				Amplitude:    amplitude,
				Frequency:    frequency,
				Duration:     duration,
				Positions:    positions,
				SendVelocity: sendVelocity,
			},
			Groups:       config.DefaultGroups(),
			ActiveMotors: motors,
		}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bank := gateway.NewBank()

	for _, tc := range tests {
		w, err := wave.New(tc.Kind, tc.Params)
		if err != nil {
			return err
		}

		fmt.Printf("\nrunning %s test (amplitude %.1f, frequency %.2f hz, %.1fs)\n",
			tc.Kind, tc.Params.Amplitude, tc.Params.Frequency, tc.Params.Duration)

		names := config.MotorNames(tc.Groups)
		rep := viz.NewConsoleReporter(os.Stdout, names)
		d := drive.New(bank, drive.Config{
			Groups:       tc.Groups,
			ActiveMotors: tc.ActiveMotors,
			TickPeriod:   tickPeriod,
			SettleDelay:  settleDelay,
		}, rep)

		rec, err := d.Run(ctx, w)
		if errors.Is(err, drive.ErrInterrupted) {
			fmt.Println("test interrupted: no data recorded")
			return nil
		}
		if err != nil {
			return err
		}

		for _, v := range rec.Validate() {
			fmt.Printf("validation: %s\n", v)
		}

		runID, err := st.Save(w, names, rec)
		if err != nil {
			return err
		}

		fmt.Printf("run id: %s\n", runID)
		fmt.Printf("samples: %d\n", len(rec.TimePoints))
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Waveform", "Time", "Duration", "Freq", "Motors", "Samples", "Violations"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			run.Waveform,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.1fs", run.Duration),
			fmt.Sprintf("%.2f", run.Frequency),
			len(run.Motors),
			run.Samples,
			run.Violations,
		})
	}
	tw.Render()

	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("waveform: %s\n", meta.Waveform)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	fmt.Println(viz.AllMotorPlots(rec, meta.MotorNames))
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}

	return viz.Replay(runID, rec, meta.MotorNames)
}

func validateRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.LoadRecord(args[0])
	if err != nil {
		return err
	}

	violations := rec.Validate()
	if len(violations) == 0 {
		fmt.Println("record is consistent")
		return nil
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	return fmt.Errorf("%d validation mismatches", len(violations))
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportCSV(args[0], os.Stdout)
}
